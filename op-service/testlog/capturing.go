package testlog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// CapturedRecord is a log record together with the attributes inherited
// from the logger it was emitted on.
type CapturedRecord struct {
	inherited []slog.Attr
	*slog.Record
}

// Attrs calls f on each record attribute, then on each inherited one.
// Iteration stops if f returns false.
func (r *CapturedRecord) Attrs(f func(slog.Attr) bool) {
	searching := true
	r.Record.Attrs(func(a slog.Attr) bool {
		searching = f(a)
		return searching
	})
	if !searching {
		return
	}
	for _, a := range r.inherited {
		if !f(a) {
			return
		}
	}
}

// AttrValue returns the value of the first attribute with the given key, or nil.
func (r *CapturedRecord) AttrValue(key string) any {
	var out any
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			out = a.Value.Any()
			return false
		}
		return true
	})
	return out
}

type captureStore struct {
	mu   sync.Mutex
	logs []*CapturedRecord
}

// CapturingHandler captures all log records and forwards them to a delegate.
// Derived handlers share the same store, which is safe for concurrent use.
type CapturingHandler struct {
	handler slog.Handler
	store   *captureStore
	attrs   []slog.Attr
}

var _ slog.Handler = (*CapturingHandler)(nil)

// CaptureLogger returns a test logger and the handler that records everything it logs.
func CaptureLogger(t Testing, level slog.Level) (log.Logger, *CapturingHandler) {
	ch := &CapturingHandler{handler: handler(t, level), store: new(captureStore)}
	return log.NewLogger(ch), ch
}

func (c *CapturingHandler) Handle(ctx context.Context, r slog.Record) error {
	c.store.mu.Lock()
	c.store.logs = append(c.store.logs, &CapturedRecord{inherited: c.attrs, Record: &r})
	c.store.mu.Unlock()
	return c.handler.Handle(ctx, r)
}

func (c *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	inherited := make([]slog.Attr, 0, len(c.attrs)+len(attrs))
	inherited = append(inherited, attrs...)
	inherited = append(inherited, c.attrs...)
	return &CapturingHandler{handler: c.handler.WithAttrs(attrs), store: c.store, attrs: inherited}
}

func (c *CapturingHandler) WithGroup(name string) slog.Handler {
	return &CapturingHandler{handler: c.handler.WithGroup(name), store: c.store, attrs: c.attrs}
}

func (c *CapturingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return c.handler.Enabled(ctx, level)
}

func (c *CapturingHandler) Clear() {
	c.store.mu.Lock()
	c.store.logs = c.store.logs[:0]
	c.store.mu.Unlock()
}

// Logs returns a snapshot of the captured records.
func (c *CapturingHandler) Logs() []*CapturedRecord {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return append([]*CapturedRecord(nil), c.store.logs...)
}

type LogFilter func(*CapturedRecord) bool

func NewLevelFilter(level slog.Level) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.Record.Level == level
	}
}

func NewMessageFilter(message string) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.Record.Message == message
	}
}

func NewMessageContainsFilter(message string) LogFilter {
	return func(r *CapturedRecord) bool {
		return strings.Contains(r.Record.Message, message)
	}
}

func NewAttributesFilter(key, value string) LogFilter {
	return func(r *CapturedRecord) bool {
		found := false
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key && a.Value.String() == value {
				found = true
				return false
			}
			return true
		})
		return found
	}
}

// FindLog returns the first captured record matching all filters, or nil.
func (c *CapturingHandler) FindLog(filters ...LogFilter) *CapturedRecord {
	for _, l := range c.Logs() {
		if matchesAll(l, filters) {
			return l
		}
	}
	return nil
}

// FindLogs returns every captured record matching all filters.
func (c *CapturingHandler) FindLogs(filters ...LogFilter) []*CapturedRecord {
	var out []*CapturedRecord
	for _, l := range c.Logs() {
		if matchesAll(l, filters) {
			out = append(out, l)
		}
	}
	return out
}

func matchesAll(r *CapturedRecord, filters []LogFilter) bool {
	for _, f := range filters {
		if !f(r) {
			return false
		}
	}
	return true
}
