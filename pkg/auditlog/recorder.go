package auditlog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Recorder is a slog.Handler that appends every handled record to an entry list.
type Recorder struct {
	state *state
	next  slog.Handler
	level slog.Leveler
	attrs []slog.Attr
	group string
}

type state struct {
	mu      sync.Mutex
	entries []Entry
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithNext forwards every record to h after it has been recorded.
// Records are forwarded only when h is enabled for their level.
func WithNext(h slog.Handler) Option {
	return func(r *Recorder) {
		if h != nil {
			r.next = h
		}
	}
}

// WithLevel sets the minimum level that is recorded. Defaults to slog.LevelDebug.
func WithLevel(l slog.Leveler) Option {
	return func(r *Recorder) {
		if l != nil {
			r.level = l
		}
	}
}

// NewRecorder returns an empty Recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		state: &state{},
		level: slog.LevelDebug,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= r.level.Level() {
		return true
	}
	return r.next != nil && r.next.Enabled(ctx, level)
}

func (r *Recorder) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level >= r.level.Level() {
		attrs := make([]slog.Attr, 0, len(r.attrs)+rec.NumAttrs())
		attrs = append(attrs, r.attrs...)
		rec.Attrs(func(a slog.Attr) bool {
			attrs = append(attrs, r.qualify(a))
			return true
		})

		r.state.mu.Lock()
		r.state.entries = append(r.state.entries, Entry{
			Time:    rec.Time,
			Level:   rec.Level,
			Message: rec.Message,
			Attrs:   attrs,
		})
		r.state.mu.Unlock()
	}

	if r.next != nil && r.next.Enabled(ctx, rec.Level) {
		return r.next.Handle(ctx, rec.Clone())
	}
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return r
	}
	c := r.clone()
	for _, a := range attrs {
		c.attrs = append(c.attrs, r.qualify(a))
	}
	if c.next != nil {
		c.next = c.next.WithAttrs(attrs)
	}
	return c
}

func (r *Recorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	c := r.clone()
	if c.group == "" {
		c.group = name
	} else {
		c.group = c.group + "." + name
	}
	if c.next != nil {
		c.next = c.next.WithGroup(name)
	}
	return c
}

// Entries returns a copy of the recorded entries in the order they were handled.
func (r *Recorder) Entries() []Entry {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return slices.Clone(r.state.entries)
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return len(r.state.entries)
}

// Reset drops every recorded entry.
func (r *Recorder) Reset() {
	r.state.mu.Lock()
	r.state.entries = nil
	r.state.mu.Unlock()
}

func (r *Recorder) clone() *Recorder {
	return &Recorder{
		state: r.state,
		next:  r.next,
		level: r.level,
		attrs: slices.Clone(r.attrs),
		group: r.group,
	}
}

func (r *Recorder) qualify(a slog.Attr) slog.Attr {
	if r.group == "" || a.Key == "" {
		return a
	}
	return slog.Attr{Key: r.group + "." + a.Key, Value: a.Value}
}
