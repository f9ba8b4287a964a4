package logger

import (
	"encoding/json"
	"sync"
)

const defaultStreamDepth = 500

// EventLogEntry is broadcast once per parsed log line.
const EventLogEntry = "logs:entry"

// Hub delivers log entries to connected WebSocket clients.
type Hub interface {
	Broadcast(msgType string, payload interface{}) error
}

// LogEntry is one parsed log line, as served to the dashboard.
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// stream is an io.Writer sink for raw zerolog JSON lines. It keeps the
// newest entries in a fixed ring and forwards each one to the hub once
// a hub is attached.
type stream struct {
	mu      sync.RWMutex
	hub     Hub
	entries []LogEntry
	next    int
	filled  bool
}

func newStream(depth int) *stream {
	if depth <= 0 {
		depth = defaultStreamDepth
	}
	return &stream{entries: make([]LogEntry, depth)}
}

func (s *stream) setHub(hub Hub) {
	s.mu.Lock()
	s.hub = hub
	s.mu.Unlock()
}

// Write parses one log line. Malformed lines are dropped silently; a log
// sink must never fail the logger.
func (s *stream) Write(p []byte) (int, error) {
	entry, ok := parseEntry(p)
	if !ok {
		return len(p), nil
	}

	s.mu.Lock()
	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.filled = true
	}
	hub := s.hub
	s.mu.Unlock()

	if hub != nil {
		_ = hub.Broadcast(EventLogEntry, entry)
	}
	return len(p), nil
}

// recent returns the buffered entries, oldest first.
func (s *stream) recent() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.filled {
		out := make([]LogEntry, s.next)
		copy(out, s.entries[:s.next])
		return out
	}
	out := make([]LogEntry, 0, len(s.entries))
	out = append(out, s.entries[s.next:]...)
	out = append(out, s.entries[:s.next]...)
	return out
}

func parseEntry(data []byte) (LogEntry, bool) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, false
	}

	var entry LogEntry
	if v, ok := raw["time"].(string); ok {
		entry.Timestamp = v
		delete(raw, "time")
	}
	if v, ok := raw["level"].(string); ok {
		entry.Level = v
		delete(raw, "level")
	}
	if v, ok := raw["component"].(string); ok {
		entry.Component = v
		delete(raw, "component")
	}
	if v, ok := raw["message"].(string); ok {
		entry.Message = v
		delete(raw, "message")
	}
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, true
}
