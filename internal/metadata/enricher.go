package metadata

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// TitleFetcher fetches the raw detail payload for a normalized external id.
type TitleFetcher interface {
	Title(ctx context.Context, externalID string) (map[string]any, error)
}

// Outcome reports how an enrichment attempt ended.
type Outcome string

const (
	// OutcomeSkipped means no fetch was needed: the record has no external
	// id to look up, or its details are already present.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeMerged means a fetch completed and its details were merged.
	OutcomeMerged Outcome = "merged"
	// OutcomeFailed means the fetch failed; the cache was left untouched.
	OutcomeFailed Outcome = "failed"
	// OutcomeCanceled means a newer enrichment superseded this one before
	// its result could be merged, or the caller's context was canceled.
	OutcomeCanceled Outcome = "canceled"
)

type enrichment struct {
	catalogID string
	cancel    context.CancelFunc
}

// Enricher lazily fetches synopsis, runtime, and credits for cached records.
// At most one fetch is in flight at a time; starting a new one cancels the
// previous, and a superseded fetch never writes to the cache even when its
// response arrives after cancellation.
type Enricher struct {
	cache  *Cache
	client TitleFetcher
	logger zerolog.Logger

	mu     sync.Mutex
	active *enrichment
}

// NewEnricher creates an enricher backed by the given cache and fetcher.
func NewEnricher(cache *Cache, client TitleFetcher, logger zerolog.Logger) *Enricher {
	return &Enricher{
		cache:  cache,
		client: client,
		logger: logger.With().Str("component", "enricher").Logger(),
	}
}

// Enrich fetches and merges details for the record with the given catalog
// id, if the record needs them. Failures are logged and swallowed: details
// are supplementary, so a failed fetch degrades to a record without them
// rather than an error the caller must handle.
func (e *Enricher) Enrich(ctx context.Context, catalogID string) Outcome {
	rec, ok := e.cache.Get(catalogID)
	if !ok || rec.IMDBID == nil || *rec.IMDBID == "" {
		return OutcomeSkipped
	}
	if rec.DetailsFetched && (rec.Synopsis != "" || !rec.Credits.Empty()) {
		return OutcomeSkipped
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	token := &enrichment{catalogID: catalogID, cancel: cancel}

	e.mu.Lock()
	if e.active != nil {
		e.active.cancel()
	}
	e.active = token
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		if e.active == token {
			e.active = nil
		}
		e.mu.Unlock()
		cancel()
	}()

	payload, err := e.client.Title(fetchCtx, *rec.IMDBID)
	if err != nil {
		if fetchCtx.Err() != nil {
			return OutcomeCanceled
		}
		e.logger.Warn().Err(err).Str("catalogId", catalogID).Msg("Detail enrichment failed")
		return OutcomeFailed
	}

	details := extractDetails(payload)

	// The supersession check and the merge must be one atomic step, so a
	// late result from a canceled fetch can never land after a newer
	// enrichment has been installed.
	e.mu.Lock()
	stale := e.active != token || fetchCtx.Err() != nil
	if !stale {
		e.cache.MergeDetails(catalogID, details)
	}
	e.mu.Unlock()

	if stale {
		return OutcomeCanceled
	}

	e.logger.Debug().
		Str("catalogId", catalogID).
		Bool("synopsis", details.Synopsis != "").
		Bool("credits", !details.Credits.Empty()).
		Msg("Merged title details")

	return OutcomeMerged
}
