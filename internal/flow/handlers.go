package flow

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/matinee/matinee/internal/catalog"
)

// Handlers provides HTTP handlers for the search, detail, versions, and
// download flows.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new flow handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers movie and TV routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	movies := g.Group("/movies")
	movies.GET("/search", h.SearchMovies)
	movies.GET("/picks", h.WeeklyPicks)
	movies.GET("/:id", h.TitleDetail)
	movies.GET("/:id/versions", h.MovieVersions)
	movies.POST("/download", h.DownloadMovie)

	tv := g.Group("/tv")
	tv.GET("/search", h.SearchShows)
	tv.GET("/:id", h.TitleDetail)
	tv.GET("/:id/versions", h.ShowVersions)
	tv.POST("/download", h.DownloadShow)
}

// httpError maps a service error onto a transport error: catalog failures
// become 502 carrying the upstream's own message, an unconfigured catalog
// becomes 503.
func httpError(err error) *echo.HTTPError {
	var upstream *catalog.UpstreamError
	if errors.As(err, &upstream) {
		return echo.NewHTTPError(http.StatusBadGateway, upstream.Error())
	}
	if errors.Is(err, catalog.ErrNotConfigured) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// SearchMovies searches the catalog for movies.
// GET /api/v1/movies/search?q=inception
func (h *Handlers) SearchMovies(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "search query is required")
	}

	movies, err := h.service.SearchMovies(c.Request().Context(), query)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, movies)
}

// SearchShows searches the catalog for TV shows.
// GET /api/v1/tv/search?q=severance
func (h *Handlers) SearchShows(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "search query is required")
	}

	shows, err := h.service.SearchShows(c.Request().Context(), query)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, shows)
}

// WeeklyPicks returns the current weekly picks list.
// GET /api/v1/movies/picks
func (h *Handlers) WeeklyPicks(c echo.Context) error {
	picks, err := h.service.WeeklyPicks(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, picks)
}

// TitleDetail returns the cached record for a title plus the outcome of
// the enrichment attempt this request triggered.
// GET /api/v1/movies/:id
// GET /api/v1/tv/:id
func (h *Handlers) TitleDetail(c echo.Context) error {
	detail := h.service.TitleDetail(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, detail)
}

// MovieVersions lists the downloadable versions of a movie.
// GET /api/v1/movies/:id/versions?title=Inception
func (h *Handlers) MovieVersions(c echo.Context) error {
	id := catalog.ID(c.Param("id"))
	versions, err := h.service.MovieVersions(c.Request().Context(), id, c.QueryParam("title"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, versions)
}

// ShowVersions lists the downloadable versions of a show.
// GET /api/v1/tv/:id/versions?title=Severance
func (h *Handlers) ShowVersions(c echo.Context) error {
	id := catalog.ID(c.Param("id"))
	versions, err := h.service.ShowVersions(c.Request().Context(), id, c.QueryParam("title"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, versions)
}

type downloadMovieRequest struct {
	TorrentID catalog.ID `json:"torrentId"`
	CatalogID catalog.ID `json:"catalogId"`
	Title     string     `json:"movieTitle"`
	Quality   string     `json:"quality"`
}

// DownloadMovie starts a movie download.
// POST /api/v1/movies/download
func (h *Handlers) DownloadMovie(c echo.Context) error {
	var req downloadMovieRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TorrentID.String() == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "torrentId is required")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "movieTitle is required")
	}

	result, err := h.service.DownloadMovie(c.Request().Context(), DownloadInput{
		TorrentID: req.TorrentID,
		CatalogID: req.CatalogID,
		Title:     req.Title,
		Quality:   req.Quality,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type downloadShowRequest struct {
	TorrentID catalog.ID `json:"torrentId"`
	CatalogID catalog.ID `json:"catalogId"`
	Title     string     `json:"showTitle"`
	Quality   string     `json:"quality"`
}

// DownloadShow starts a show download.
// POST /api/v1/tv/download
func (h *Handlers) DownloadShow(c echo.Context) error {
	var req downloadShowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TorrentID.String() == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "torrentId is required")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "showTitle is required")
	}

	result, err := h.service.DownloadShow(c.Request().Context(), DownloadInput{
		TorrentID: req.TorrentID,
		CatalogID: req.CatalogID,
		Title:     req.Title,
		Quality:   req.Quality,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
