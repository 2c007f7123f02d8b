package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is a flattened log record: "level", "message" plus every attribute.
type LogEntry map[string]any

// LogCapture is a memory-backed slog.Handler for tests.
type LogCapture struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	attrs   []slog.Attr
}

// NewLogCapture returns an empty capture handler.
func NewLogCapture() *LogCapture {
	return &LogCapture{
		mu:      &sync.Mutex{},
		entries: &[]LogEntry{},
	}
}

// Logger wraps the handler in a *slog.Logger.
func (h *LogCapture) Logger() *slog.Logger {
	return slog.New(h)
}

func (h *LogCapture) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *LogCapture) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		"level":   r.Level.String(),
		"message": r.Message,
	}
	for _, a := range h.attrs {
		entry[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = append(*h.entries, entry)
	return nil
}

// WithAttrs shares the entry buffer so records from derived loggers
// (logger.With("component", ...)) land in the same capture.
func (h *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &LogCapture{mu: h.mu, entries: h.entries, attrs: merged}
}

// WithGroup is a no-op; groups are flattened.
func (h *LogCapture) WithGroup(_ string) slog.Handler {
	return h
}

// Entries returns a copy of everything captured so far.
func (h *LogCapture) Entries() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogEntry, len(*h.entries))
	copy(out, *h.entries)
	return out
}

// AtLevel returns the captured entries logged at level.
func (h *LogCapture) AtLevel(level slog.Level) []LogEntry {
	var out []LogEntry
	for _, e := range h.Entries() {
		if e["level"] == level.String() {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all captured entries.
func (h *LogCapture) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = (*h.entries)[:0]
}
