package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is one captured log entry. Attribute keys are flattened
// with dots when the logger used WithGroup.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// logBuffer is the record store shared by a handler and every handler
// derived from it through WithAttrs or WithGroup.
type logBuffer struct {
	mu      sync.Mutex
	records []LogRecord
	t       *testing.T
}

// BufferedSlogHandler is a slog.Handler that keeps every record in
// memory so tests can assert on messages and attributes. All levels
// are captured regardless of logger configuration, and attributes
// bound with Logger.With appear on each record.
type BufferedSlogHandler struct {
	buf    *logBuffer
	bound  []slog.Attr
	groups []string
}

// NewBufferedSlogHandler creates an empty capture handler. Captured
// records are echoed through t.Logf so a failing test shows its log
// stream.
func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{buf: &logBuffer{t: t}}
}

// NewTestLogger returns a logger wired to a fresh capture handler.
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	h := NewBufferedSlogHandler(t)
	return slog.New(h), h
}

// Enabled implements slog.Handler.
func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.bound))
	for _, a := range h.bound {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefixed(a.Key)] = a.Value.Resolve().Any()
		return true
	})

	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.records = append(h.buf.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	if h.buf.t != nil {
		h.buf.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// prefixed qualifies an attribute key with the open groups.
func (h *BufferedSlogHandler) prefixed(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

// WithAttrs implements slog.Handler. The derived handler records into
// the same buffer with the given attributes attached to every record.
// Keys are qualified at bind time, matching slog's group semantics.
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make([]slog.Attr, 0, len(h.bound)+len(attrs))
	bound = append(bound, h.bound...)
	for _, a := range attrs {
		bound = append(bound, slog.Attr{Key: h.prefixed(a.Key), Value: a.Value})
	}

	derived := *h
	derived.bound = bound
	return &derived
}

// WithGroup implements slog.Handler.
func (h *BufferedSlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	derived := *h
	derived.groups = append(append([]string{}, h.groups...), name)
	return &derived
}

// GetRecords returns a copy of every captured record.
func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()

	out := make([]LogRecord, len(h.buf.records))
	copy(out, h.buf.records)
	return out
}

// GetRecordsByLevel returns the captured records at exactly the given
// level, in capture order.
func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range h.GetRecords() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// ContainsMessage reports whether any record's message contains the
// given substring.
func (h *BufferedSlogHandler) ContainsMessage(message string) bool {
	for _, r := range h.GetRecords() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries the attribute with
// exactly the given value.
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.GetRecords() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// Clear drops every captured record.
func (h *BufferedSlogHandler) Clear() {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.records = h.buf.records[:0]
}

// AssertLogContains fails the test when no record at the given level
// contains the message substring, listing what was captured instead.
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()

	records := handler.GetRecordsByLevel(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}

	t.Errorf("no %s log containing %q", level, message)
	for _, r := range records {
		t.Logf("captured at %s: %s", level, r.Message)
	}
}
