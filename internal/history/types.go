package history

// MediaType represents the type of media a download belongs to.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Entry is one recorded download request.
type Entry struct {
	ID        string    `json:"id"`
	MediaType MediaType `json:"mediaType"`
	CatalogID string    `json:"catalogId"`
	Title     string    `json:"title"`
	TorrentID string    `json:"torrentId"`
	Quality   string    `json:"quality,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

// CreateInput contains fields for recording a download.
type CreateInput struct {
	MediaType MediaType
	CatalogID string
	Title     string
	TorrentID string
	Quality   string
	Message   string
}

// ListOptions contains options for listing downloads.
type ListOptions struct {
	MediaType string
	Page      int
	PageSize  int
}

// ListResponse contains paginated download results, newest first.
type ListResponse struct {
	Items      []*Entry `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalCount int64    `json:"totalCount"`
	TotalPages int      `json:"totalPages"`
}
