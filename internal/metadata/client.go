package metadata

import (
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

var ErrNotConfigured = errors.New("metadata endpoint is not configured")

// Client fetches title details from the metadata endpoint.
type Client struct {
	httpClient *http.Client
	config     config.MetadataConfig
	logger     zerolog.Logger
}

// NewClient creates a new metadata client.
func NewClient(cfg config.MetadataConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "metadata").Logger(),
	}
}

// IsConfigured returns true if the endpoint base URL is set.
func (c *Client) IsConfigured() bool {
	return c.config.BaseURL != ""
}

// Title fetches the raw detail payload for a normalized external id.
// Payload shape varies between endpoint versions, so it is returned
// undecoded for the extraction layer to pick apart.
func (c *Client) Title(ctx context.Context, externalID string) (map[string]any, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	reqURL := fmt.Sprintf("%s/title/%s", strings.TrimSuffix(c.config.BaseURL, "/"), url.PathEscape(externalID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamFailure("title lookup", resp)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug().Str("externalId", externalID).Msg("Fetched title details")

	return payload, nil
}

// upstreamFailure turns a non-2xx response into an error carrying the body
// text when the endpoint sent one, or a status-coded fallback otherwise.
func upstreamFailure(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("%s failed (%d)", op, resp.StatusCode)
}
