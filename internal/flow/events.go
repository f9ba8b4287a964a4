package flow

// WebSocket event types for dashboard updates.
const (
	EventPicksRefreshed   = "picks:refreshed"
	EventEnrichmentMerged = "enrichment:merged"
	EventEnrichmentFailed = "enrichment:failed"
	EventDownloadStarted  = "download:started"
)

// PicksRefreshedPayload is sent after the weekly picks list is reloaded.
type PicksRefreshedPayload struct {
	Count int `json:"count"`
}

// EnrichmentPayload is sent when an enrichment attempt merges or fails.
type EnrichmentPayload struct {
	CatalogID string `json:"catalogId"`
}

// DownloadStartedPayload is sent when the catalog accepts a download.
type DownloadStartedPayload struct {
	MediaType string `json:"mediaType"`
	CatalogID string `json:"catalogId,omitempty"`
	Title     string `json:"title"`
	Quality   string `json:"quality,omitempty"`
}
