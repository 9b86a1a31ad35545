// Package testutil provides helpers shared across package tests, primarily
// a buffered slog handler for asserting on structured log output.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogEntry is one captured log record
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is a slog.Handler that buffers records for inspection
type CaptureHandler struct {
	mu      sync.Mutex
	entries []LogEntry
	t       *testing.T
}

// NewCaptureHandler creates a buffering handler. Records are also echoed to
// the test log for debugging.
func NewCaptureHandler(t *testing.T) *CaptureHandler {
	return &CaptureHandler{t: t}
}

// NewTestLogger returns a logger wired to a fresh capture handler
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	handler := NewCaptureHandler(t)
	return slog.New(handler), handler
}

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.entries = append(h.entries, LogEntry{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// Enabled implements slog.Handler; tests capture every level
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler
func (h *CaptureHandler) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler
func (h *CaptureHandler) WithGroup(string) slog.Handler {
	return h
}

// Entries returns a copy of the captured records
func (h *CaptureHandler) Entries() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]LogEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// EntriesAtLevel returns the captured records at the given level
func (h *CaptureHandler) EntriesAtLevel(level slog.Level) []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []LogEntry
	for _, e := range h.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// ContainsMessage reports whether any record's message contains the text
func (h *CaptureHandler) ContainsMessage(text string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range h.entries {
		if strings.Contains(e.Message, text) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries the attribute
func (h *CaptureHandler) ContainsAttr(key string, value any) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range h.entries {
		if got, ok := e.Attrs[key]; ok && got == value {
			return true
		}
	}
	return false
}

// Reset drops all captured records
func (h *CaptureHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
}

// AssertLogged fails the test unless a record at the level contains the text
func AssertLogged(t *testing.T, handler *CaptureHandler, level slog.Level, text string) {
	t.Helper()

	for _, e := range handler.EntriesAtLevel(level) {
		if strings.Contains(e.Message, text) {
			return
		}
	}
	t.Errorf("expected log message at level %s containing %q", level, text)
}

// AssertNoErrors fails the test if any error-level record was captured
func AssertNoErrors(t *testing.T, handler *CaptureHandler) {
	t.Helper()

	for _, e := range handler.EntriesAtLevel(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", e.Message, e.Attrs)
	}
}
