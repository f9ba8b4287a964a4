package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/matinee/matinee/internal/logger"
)

// LogsProvider exposes buffered log entries and the log file location.
// The application logger satisfies it.
type LogsProvider interface {
	RecentLogs() []logger.LogEntry
	LogFilePath() string
}

// SetLogsProvider attaches the logs provider. Called from main after the
// server is constructed; the logs endpoints return empty results until then.
func (s *Server) SetLogsProvider(p LogsProvider) {
	s.logsProvider = p
}

// getRecentLogs handles GET /api/v1/logs
func (s *Server) getRecentLogs(c echo.Context) error {
	if s.logsProvider == nil {
		return c.JSON(http.StatusOK, []logger.LogEntry{})
	}
	entries := s.logsProvider.RecentLogs()
	if entries == nil {
		entries = []logger.LogEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// downloadLogFile handles GET /api/v1/logs/download
func (s *Server) downloadLogFile(c echo.Context) error {
	if s.logsProvider == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "log file not available",
		})
	}
	path := s.logsProvider.LogFilePath()
	if path == "" {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "log file not available",
		})
	}
	return c.Attachment(path, "matinee.log")
}
