// Package api assembles the HTTP server: service construction, middleware,
// and route registration.
package api

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/matinee/matinee/internal/api/handlers"
	"github.com/matinee/matinee/internal/catalog"
	"github.com/matinee/matinee/internal/config"
	"github.com/matinee/matinee/internal/flow"
	"github.com/matinee/matinee/internal/history"
	"github.com/matinee/matinee/internal/metadata"
	"github.com/matinee/matinee/internal/scheduler"
	"github.com/matinee/matinee/internal/settings"
	"github.com/matinee/matinee/internal/websocket"
)

// Server handles HTTP requests for the Matinee API.
type Server struct {
	echo   *echo.Echo
	db     *sql.DB
	hub    *websocket.Hub
	sched  *scheduler.Scheduler
	logger zerolog.Logger
	cfg    *config.Config

	// Services
	settingsService *settings.Service
	historyService  *history.Service
	cache           *metadata.Cache
	enricher        *metadata.Enricher
	catalogClient   *catalog.Client
	flowService     *flow.Service

	logsProvider LogsProvider
}

// NewServer creates a new API server instance.
func NewServer(db *sql.DB, hub *websocket.Hub, sched *scheduler.Scheduler, cfg *config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		db:     db,
		hub:    hub,
		sched:  sched,
		logger: logger,
		cfg:    cfg,
	}

	// Initialize services
	s.settingsService = settings.NewService(db)
	s.historyService = history.NewService(db, logger)

	// Metadata cache and enrichment pipeline
	s.cache = metadata.NewCache()
	metadataClient := metadata.NewClient(cfg.Metadata, logger)
	s.enricher = metadata.NewEnricher(s.cache, metadataClient, logger)

	// Catalog client reads its token from settings on every call, so a
	// token saved through the API takes effect without a restart.
	s.catalogClient = catalog.NewClient(cfg.Catalog, s.settingsService, logger)

	// Flow service with WebSocket events
	s.flowService = flow.NewService(s.catalogClient, s.cache, s.enricher, s.historyService, logger)
	s.flowService.SetBroadcaster(hub)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Bootstrap prepares stateful services before the server starts: the
// settings store loads or creates its encryption salt.
func (s *Server) Bootstrap(ctx context.Context) error {
	return s.settingsService.Bootstrap(ctx, s.cfg.Secrets.Key)
}

// FlowService returns the flow service (for scheduler task registration).
func (s *Server) FlowService() *flow.Service {
	return s.flowService
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestID())

	// Security headers
	s.echo.Use(securityHeaders)

	// CORS
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// securityHeaders sets browser-facing headers on every response and keeps
// API responses out of caches.
func securityHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if strings.HasPrefix(c.Request().URL.Path, "/api") {
			h.Set("Cache-Control", "no-store")
		}
		return next(c)
	}
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	// API v1 group
	api := s.echo.Group("/api/v1")

	// System routes
	api.GET("/status", s.getStatus)

	// Movie and TV flows
	flowHandlers := flow.NewHandlers(s.flowService)
	flowHandlers.RegisterRoutes(api)

	// Settings routes
	settingsHandlers := settings.NewHandlers(s.settingsService)
	settingsHandlers.RegisterRoutes(api.Group("/settings"))

	// History routes
	historyHandlers := history.NewHandlers(s.historyService)
	historyHandlers.RegisterRoutes(api.Group("/history"))

	// Scheduler routes
	schedulerHandler := handlers.NewSchedulerHandler(s.sched)
	api.GET("/tasks", schedulerHandler.ListTasks)
	api.POST("/tasks/:id/run", schedulerHandler.RunTask)

	// Log streaming
	api.GET("/logs", s.getRecentLogs)
	api.GET("/logs/download", s.downloadLogFile)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance (for the WebSocket route).
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// --- Handler implementations ---

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":      config.Version,
		"cachedTitles": s.cache.Len(),
		"wsClients":    s.hub.ClientCount(),
	})
}
