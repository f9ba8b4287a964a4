package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/matinee/matinee/internal/config"
)

var ErrNotConfigured = errors.New("catalog endpoint is not configured")

// TokenSource supplies the opaque catalog token attached to every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the catalog service that owns search, version
// enumeration, and download execution. Movie and TV operations share one
// wire contract under two base URLs.
type Client struct {
	httpClient *http.Client
	config     config.CatalogConfig
	tokens     TokenSource
	logger     zerolog.Logger
}

// NewClient creates a new catalog client.
func NewClient(cfg config.CatalogConfig, tokens TokenSource, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		tokens: tokens,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

type moviesResponse struct {
	Movies []Movie `json:"movies"`
}

type showsResponse struct {
	Shows []Show `json:"shows"`
}

type versionsResponse struct {
	Versions []Version `json:"versions"`
}

// SearchMovies searches the movie catalog.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Movie, error) {
	params := url.Values{}
	params.Set("q", query)

	var out moviesResponse
	if err := c.get(ctx, "search", c.config.MovieBaseURL, "/search", params, &out); err != nil {
		return nil, err
	}
	return out.Movies, nil
}

// TopMovies fetches the catalog's weekly picks.
func (c *Client) TopMovies(ctx context.Context) ([]Movie, error) {
	var out moviesResponse
	if err := c.get(ctx, "top movies", c.config.MovieBaseURL, "/topMovies", url.Values{}, &out); err != nil {
		return nil, err
	}
	return out.Movies, nil
}

// GetVersions lists the downloadable versions of a movie.
func (c *Client) GetVersions(ctx context.Context, id ID, title string) ([]Version, error) {
	params := url.Values{}
	params.Set("id", id.String())
	params.Set("title", title)

	var out versionsResponse
	if err := c.get(ctx, "get versions", c.config.MovieBaseURL, "/getVersions", params, &out); err != nil {
		return nil, err
	}
	return out.Versions, nil
}

// DownloadMovie asks the catalog to start downloading a movie version.
func (c *Client) DownloadMovie(ctx context.Context, req DownloadRequest) (DownloadResult, error) {
	body := map[string]any{
		"torrentId":  req.TorrentID,
		"movieTitle": req.MovieTitle,
	}

	var out DownloadResult
	if err := c.post(ctx, "download movie", c.config.MovieBaseURL, "/downloadMovie", body, &out); err != nil {
		return DownloadResult{}, err
	}
	return out, nil
}

// SearchShows searches the TV catalog.
func (c *Client) SearchShows(ctx context.Context, query string) ([]Show, error) {
	params := url.Values{}
	params.Set("q", query)

	var out showsResponse
	if err := c.get(ctx, "tv search", c.config.TVBaseURL, "/search", params, &out); err != nil {
		return nil, err
	}
	return out.Shows, nil
}

// GetShowVersions lists the downloadable versions of a show.
func (c *Client) GetShowVersions(ctx context.Context, id ID, title string) ([]Version, error) {
	params := url.Values{}
	params.Set("id", id.String())
	params.Set("title", title)

	var out versionsResponse
	if err := c.get(ctx, "tv get versions", c.config.TVBaseURL, "/getVersions", params, &out); err != nil {
		return nil, err
	}
	return out.Versions, nil
}

// DownloadShow asks the catalog to start downloading a show version.
func (c *Client) DownloadShow(ctx context.Context, req ShowDownloadRequest) (DownloadResult, error) {
	body := map[string]any{
		"torrentId": req.TorrentID,
		"showTitle": req.ShowTitle,
	}

	var out DownloadResult
	if err := c.post(ctx, "download show", c.config.TVBaseURL, "/downloadShow", body, &out); err != nil {
		return DownloadResult{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, base, path string, params url.Values, out any) error {
	if base == "" {
		return ErrNotConfigured
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog token: %w", err)
	}
	params.Set("token", token)

	reqURL := fmt.Sprintf("%s%s?%s", strings.TrimSuffix(base, "/"), path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, op, out)
}

func (c *Client) post(ctx context.Context, op, base, path string, body map[string]any, out any) error {
	if base == "" {
		return ErrNotConfigured
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog token: %w", err)
	}
	body["token"] = token

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(base, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn().Int("status", resp.StatusCode).Str("op", op).Msg("Catalog returned an error")
		return &UpstreamError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
