package flow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/matinee/matinee/internal/catalog"
	"github.com/matinee/matinee/internal/config"
	"github.com/matinee/matinee/internal/metadata"
)

func TestHandlers_SearchMoviesRequiresQuery(t *testing.T) {
	cs := &catalogStub{}
	ms := &metadataStub{}
	f := newTestFlow(t, cs.handler(), ms.handler())
	h := NewHandlers(f.service)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/search?q=%20", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SearchMovies(c)
	if err == nil {
		t.Fatal("Expected error for missing query")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("Expected HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", httpErr.Code, http.StatusBadRequest)
	}
}

func TestHandlers_SearchMoviesUpstreamError(t *testing.T) {
	cs := &catalogStub{}
	cs.failSearches(http.StatusServiceUnavailable, "catalog maintenance window")
	ms := &metadataStub{}
	f := newTestFlow(t, cs.handler(), ms.handler())
	h := NewHandlers(f.service)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/search?q=inception", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SearchMovies(c)
	if err == nil {
		t.Fatal("Expected error for upstream failure")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("Expected HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadGateway {
		t.Errorf("Status = %d, want %d", httpErr.Code, http.StatusBadGateway)
	}
	if httpErr.Message != "catalog maintenance window" {
		t.Errorf("Message = %v, want upstream body", httpErr.Message)
	}
}

func TestHandlers_SearchMoviesNotConfigured(t *testing.T) {
	logger := zerolog.Nop()
	cache := metadata.NewCache()
	enricher := metadata.NewEnricher(cache, metadata.NewClient(config.MetadataConfig{}, logger), logger)
	catalogClient := catalog.NewClient(config.CatalogConfig{}, staticToken(""), logger)
	service := NewService(catalogClient, cache, enricher, nil, logger)
	h := NewHandlers(service)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/search?q=inception", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SearchMovies(c)
	if err == nil {
		t.Fatal("Expected error for unconfigured catalog")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("Expected HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", httpErr.Code, http.StatusServiceUnavailable)
	}
}

func TestHandlers_TitleDetailUnknownID(t *testing.T) {
	cs := &catalogStub{}
	ms := &metadataStub{}
	f := newTestFlow(t, cs.handler(), ms.handler())
	h := NewHandlers(f.service)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/999", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("999")

	if err := h.TitleDetail(c); err != nil {
		t.Fatalf("TitleDetail() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var detail map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if detail["catalogId"] != "999" {
		t.Errorf("catalogId = %v, want 999", detail["catalogId"])
	}
	if detail["enrichment"] != "skipped" {
		t.Errorf("enrichment = %v, want skipped", detail["enrichment"])
	}
}

func TestHandlers_DownloadMovie(t *testing.T) {
	cs := &catalogStub{}
	ms := &metadataStub{}
	f := newTestFlow(t, cs.handler(), ms.handler())
	h := NewHandlers(f.service)

	e := echo.New()
	body := `{"torrentId":9,"catalogId":123,"movieTitle":"Inception","quality":"1080p"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movies/download", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.DownloadMovie(c); err != nil {
		t.Fatalf("DownloadMovie() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var result catalog.DownloadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !result.Started {
		t.Error("Started = false, want true")
	}
	if got := cs.lastDownloadBody(); !strings.Contains(got, `"torrentId":9`) {
		t.Errorf("upstream body = %s, want numeric torrentId", got)
	}
}

func TestHandlers_DownloadMovieValidation(t *testing.T) {
	cs := &catalogStub{}
	ms := &metadataStub{}
	f := newTestFlow(t, cs.handler(), ms.handler())
	h := NewHandlers(f.service)

	tests := []struct {
		name string
		body string
	}{
		{"missing torrent id", `{"movieTitle":"Inception"}`},
		{"missing title", `{"torrentId":9}`},
		{"malformed body", `{"torrentId":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/movies/download", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.DownloadMovie(c)
			if err == nil {
				t.Fatal("Expected error for invalid request")
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("Expected HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want %d", httpErr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandlers_DownloadShowValidation(t *testing.T) {
	cs := &catalogStub{}
	ms := &metadataStub{}
	f := newTestFlow(t, cs.handler(), ms.handler())
	h := NewHandlers(f.service)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tv/download", strings.NewReader(`{"torrentId":"v-55"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.DownloadShow(c)
	if err == nil {
		t.Fatal("Expected error for missing show title")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("Expected HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", httpErr.Code, http.StatusBadRequest)
	}
}
