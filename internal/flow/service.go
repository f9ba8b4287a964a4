// Package flow coordinates the dashboard's user-visible steps: searching
// the catalog, reading cached title detail, listing versions, and starting
// downloads. Every title list fetched from the catalog is seeded into the
// metadata cache on the way through, so later views render from memory.
package flow

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/matinee/matinee/internal/catalog"
	"github.com/matinee/matinee/internal/history"
	"github.com/matinee/matinee/internal/metadata"
)

// Broadcaster interface for sending events to clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Service orchestrates catalog, metadata, and history operations.
type Service struct {
	catalog     *catalog.Client
	cache       *metadata.Cache
	enricher    *metadata.Enricher
	history     *history.Service
	broadcaster Broadcaster
	logger      zerolog.Logger

	mu    sync.RWMutex
	picks []catalog.Movie
}

// NewService creates a new flow service.
func NewService(catalogClient *catalog.Client, cache *metadata.Cache, enricher *metadata.Enricher, historyService *history.Service, logger zerolog.Logger) *Service {
	return &Service{
		catalog:  catalogClient,
		cache:    cache,
		enricher: enricher,
		history:  historyService,
		logger:   logger.With().Str("component", "flow").Logger(),
	}
}

// SetBroadcaster sets the WebSocket broadcaster for real-time events.
func (s *Service) SetBroadcaster(broadcaster Broadcaster) {
	s.broadcaster = broadcaster
}

// Detail is the detail view of one title: the cached record plus the
// outcome of the enrichment attempt this request triggered.
type Detail struct {
	metadata.Record
	Enrichment metadata.Outcome `json:"enrichment"`
}

// SearchMovies queries the catalog and seeds the metadata cache with the
// results.
func (s *Service) SearchMovies(ctx context.Context, query string) ([]catalog.Movie, error) {
	movies, err := s.catalog.SearchMovies(ctx, query)
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []catalog.Movie{}
	}
	s.seedMovies(movies)

	s.logger.Debug().Str("query", query).Int("results", len(movies)).Msg("Movie search completed")
	return movies, nil
}

// SearchShows queries the catalog's TV side and seeds the metadata cache
// with the results.
func (s *Service) SearchShows(ctx context.Context, query string) ([]catalog.Show, error) {
	shows, err := s.catalog.SearchShows(ctx, query)
	if err != nil {
		return nil, err
	}
	if shows == nil {
		shows = []catalog.Show{}
	}
	s.seedShows(shows)

	s.logger.Debug().Str("query", query).Int("results", len(shows)).Msg("Show search completed")
	return shows, nil
}

// WeeklyPicks returns the current picks list, fetching it from the catalog
// when nothing is cached yet.
func (s *Service) WeeklyPicks(ctx context.Context) ([]catalog.Movie, error) {
	s.mu.RLock()
	picks := s.picks
	s.mu.RUnlock()

	if picks != nil {
		return picks, nil
	}
	if _, err := s.RefreshPicks(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.picks, nil
}

// RefreshPicks reloads the weekly picks list from the catalog, seeds the
// metadata cache, and notifies connected dashboards. It returns the number
// of titles fetched.
func (s *Service) RefreshPicks(ctx context.Context) (int, error) {
	movies, err := s.catalog.TopMovies(ctx)
	if err != nil {
		return 0, err
	}
	if movies == nil {
		movies = []catalog.Movie{}
	}
	s.seedMovies(movies)

	s.mu.Lock()
	s.picks = movies
	s.mu.Unlock()

	s.logger.Info().Int("count", len(movies)).Msg("Weekly picks refreshed")
	s.notify(EventPicksRefreshed, PicksRefreshedPayload{Count: len(movies)})
	return len(movies), nil
}

// TitleDetail returns the cached record for a catalog id after running an
// enrichment attempt for it. An id the cache has never seen yields a
// skeleton record rather than an error, so the dashboard can keep a detail
// view open across restarts and render whatever is known.
func (s *Service) TitleDetail(ctx context.Context, catalogID string) Detail {
	outcome := s.enricher.Enrich(ctx, catalogID)

	rec, ok := s.cache.Get(catalogID)
	if !ok {
		rec = metadata.Record{CatalogID: catalogID}
	}

	switch outcome {
	case metadata.OutcomeMerged:
		s.notify(EventEnrichmentMerged, EnrichmentPayload{CatalogID: catalogID})
	case metadata.OutcomeFailed:
		s.notify(EventEnrichmentFailed, EnrichmentPayload{CatalogID: catalogID})
	}

	return Detail{Record: rec, Enrichment: outcome}
}

// MovieVersions lists the downloadable versions of a movie. The catalog
// wants the title alongside the id; when the caller doesn't supply one the
// cached record fills it in.
func (s *Service) MovieVersions(ctx context.Context, id catalog.ID, title string) ([]catalog.Version, error) {
	versions, err := s.catalog.GetVersions(ctx, id, s.titleFor(id, title))
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []catalog.Version{}
	}
	return versions, nil
}

// ShowVersions lists the downloadable versions of a show.
func (s *Service) ShowVersions(ctx context.Context, id catalog.ID, title string) ([]catalog.Version, error) {
	versions, err := s.catalog.GetShowVersions(ctx, id, s.titleFor(id, title))
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []catalog.Version{}
	}
	return versions, nil
}

// DownloadInput describes the version the user confirmed for download.
type DownloadInput struct {
	TorrentID catalog.ID
	CatalogID catalog.ID
	Title     string
	Quality   string
}

// DownloadMovie asks the catalog to start a movie download, records it in
// history, and notifies connected dashboards. History failures are logged
// and swallowed; the download has already started upstream.
func (s *Service) DownloadMovie(ctx context.Context, input DownloadInput) (catalog.DownloadResult, error) {
	result, err := s.catalog.DownloadMovie(ctx, catalog.DownloadRequest{
		TorrentID:  input.TorrentID,
		MovieTitle: input.Title,
	})
	if err != nil {
		return catalog.DownloadResult{}, err
	}

	s.recordDownload(ctx, history.MediaTypeMovie, input, result)
	return result, nil
}

// DownloadShow asks the catalog to start a show download, records it in
// history, and notifies connected dashboards.
func (s *Service) DownloadShow(ctx context.Context, input DownloadInput) (catalog.DownloadResult, error) {
	result, err := s.catalog.DownloadShow(ctx, catalog.ShowDownloadRequest{
		TorrentID: input.TorrentID,
		ShowTitle: input.Title,
	})
	if err != nil {
		return catalog.DownloadResult{}, err
	}

	s.recordDownload(ctx, history.MediaTypeTV, input, result)
	return result, nil
}

// titleFor falls back to the cached title when the caller didn't send one.
func (s *Service) titleFor(id catalog.ID, title string) string {
	if title != "" {
		return title
	}
	if rec, ok := s.cache.Get(id.String()); ok {
		return rec.Title
	}
	return ""
}

func (s *Service) seedMovies(movies []catalog.Movie) {
	records := make([]metadata.LightRecord, 0, len(movies))
	for _, m := range movies {
		records = append(records, metadata.LightRecord{
			CatalogID: m.ID.String(),
			PosterURL: m.PosterURL,
			Title:     m.Title,
			Year:      m.Year.String(),
			IMDBIDRaw: m.IMDBID,
		})
	}
	s.cache.RememberLight(records)
}

func (s *Service) seedShows(shows []catalog.Show) {
	records := make([]metadata.LightRecord, 0, len(shows))
	for _, sh := range shows {
		records = append(records, metadata.LightRecord{
			CatalogID: sh.ID.String(),
			PosterURL: sh.PosterURL,
			Title:     sh.Title,
			Year:      sh.Year.String(),
			IMDBIDRaw: sh.IMDBID,
		})
	}
	s.cache.RememberLight(records)
}

func (s *Service) recordDownload(ctx context.Context, mediaType history.MediaType, input DownloadInput, result catalog.DownloadResult) {
	s.logger.Info().
		Str("mediaType", string(mediaType)).
		Str("title", input.Title).
		Str("torrentId", input.TorrentID.String()).
		Msg("Download started")

	if _, err := s.history.Create(ctx, history.CreateInput{
		MediaType: mediaType,
		CatalogID: input.CatalogID.String(),
		Title:     input.Title,
		TorrentID: input.TorrentID.String(),
		Quality:   input.Quality,
		Message:   result.Message,
	}); err != nil {
		s.logger.Error().Err(err).Str("title", input.Title).Msg("Failed to record download")
	}

	s.notify(EventDownloadStarted, DownloadStartedPayload{
		MediaType: string(mediaType),
		CatalogID: input.CatalogID.String(),
		Title:     input.Title,
		Quality:   input.Quality,
	})
}

func (s *Service) notify(msgType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(msgType, payload)
}
