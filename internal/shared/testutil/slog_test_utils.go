package testutil

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is one captured log call. Attribute keys inside groups are joined with ".".
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// recordSink is shared by a handler and every handler derived from it
type recordSink struct {
	mu      sync.Mutex
	records []LogRecord
	t       *testing.T
}

// BufferedSlogHandler keeps every record in memory and echoes it to the test log
type BufferedSlogHandler struct {
	sink   *recordSink
	attrs  []slog.Attr
	prefix string
}

// NewBufferedSlogHandler creates a handler. t may be nil to skip echoing.
func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{sink: &recordSink{t: t}}
}

func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = a.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	h.sink.records = append(h.sink.records, LogRecord{Time: r.Time, Level: r.Level, Message: r.Message, Attrs: attrs})
	h.sink.mu.Unlock()

	if h.sink.t != nil {
		h.sink.t.Logf("%s %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := slices.Clone(h.attrs)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &BufferedSlogHandler{sink: h.sink, attrs: merged, prefix: h.prefix}
}

func (h *BufferedSlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &BufferedSlogHandler{sink: h.sink, attrs: h.attrs, prefix: h.prefix + name + "."}
}

// GetRecords returns a copy of the captured records in logging order
func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return slices.Clone(h.sink.records)
}

// GetRecordsByLevel returns the records logged at exactly level
func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	return slices.DeleteFunc(h.GetRecords(), func(r LogRecord) bool { return r.Level != level })
}

// ContainsMessage reports whether any message contains substr
func (h *BufferedSlogHandler) ContainsMessage(substr string) bool {
	return slices.ContainsFunc(h.GetRecords(), func(r LogRecord) bool {
		return strings.Contains(r.Message, substr)
	})
}

// ContainsAttr reports whether any record has key set to value
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	return slices.ContainsFunc(h.GetRecords(), func(r LogRecord) bool {
		v, ok := r.Attrs[key]
		return ok && v == value
	})
}

// Count returns the number of captured records
func (h *BufferedSlogHandler) Count() int {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return len(h.sink.records)
}

// NewTestLogger returns a logger backed by a fresh BufferedSlogHandler
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	h := NewBufferedSlogHandler(t)
	return slog.New(h), h
}

// AssertLogContains fails t unless a record at level contains message
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()

	records := handler.GetRecordsByLevel(level)
	if slices.ContainsFunc(records, func(r LogRecord) bool { return strings.Contains(r.Message, message) }) {
		return
	}

	t.Errorf("no %s record contains %q", level, message)
	for _, r := range records {
		t.Logf("  got: %s", r.Message)
	}
}

// AssertNoWarnings fails t for every record at warn level or above
func AssertNoWarnings(t *testing.T, handler *BufferedSlogHandler) {
	t.Helper()

	for _, r := range handler.GetRecords() {
		if r.Level >= slog.LevelWarn {
			t.Errorf("unexpected %s record: %s %v", r.Level, r.Message, r.Attrs)
		}
	}
}
