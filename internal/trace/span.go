package trace

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span id. Zero is never returned.
func NextSpanID() uint64 { return spanCounter.Add(1) }

func goroutineID() uint64 {
	var buf [64]byte
	line := buf[:runtime.Stack(buf[:], false)]
	line, ok := bytes.CutPrefix(line, []byte("goroutine "))
	if !ok {
		return 0
	}
	if i := bytes.IndexByte(line, ' '); i >= 0 {
		line = line[:i]
	}
	gid, err := strconv.ParseUint(string(line), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is an open begin/end pair. A span whose scope the level filters out
// is silent: it emits nothing and its children attach to the nearest
// emitting ancestor.
type Span struct {
	tracer  Tracer
	live    bool
	id      uint64 // own id when live, inherited parent id otherwise
	parent  uint64
	gid     uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin opens a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil {
		t = Nop
	}
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: t, id: parent}
	}
	sp := &Span{
		tracer:  t,
		live:    true,
		id:      NextSpanID(),
		parent:  parent,
		gid:     goroutineID(),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:     sp.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   sp.id,
		ParentID: parent,
		GID:      sp.gid,
		Name:     name,
	})
	return sp
}

// Start opens a span with the tracer and parent carried by ctx and returns
// a context in which the new span is the parent.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	sp := Begin(FromContext(ctx), scope, name, ParentFrom(ctx))
	if sp.live {
		ctx = WithParent(ctx, sp.id)
	}
	return ctx, sp
}

// Anchor returns a silent span standing for the parent recorded in ctx.
// Long-lived owners such as resolver sessions keep one and open their
// work spans with Child.
func Anchor(ctx context.Context) *Span {
	return &Span{tracer: FromContext(ctx), id: ParentFrom(ctx)}
}

// Child opens a span under s on the same tracer.
func (s *Span) Child(scope Scope, name string) *Span {
	if s == nil {
		return Begin(Nop, scope, name, 0)
	}
	return Begin(s.tracer, scope, name, s.id)
}

// Enabled reports whether s emits. Callers use it to skip building details.
func (s *Span) Enabled() bool { return s != nil && s.live }

// Attr adds a key-value pair to the end event.
func (s *Span) Attr(key, value string) *Span {
	if !s.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if !s.Enabled() {
		return 0
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return dur
}

// Endf is End with a detail formatted only when s emits.
func (s *Span) Endf(format string, args ...any) time.Duration {
	if !s.Enabled() {
		return 0
	}
	return s.End(fmt.Sprintf(format, args...))
}

// ID is the id children of s attach to.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		SpanID:   NextSpanID(),
		ParentID: parent,
		GID:      goroutineID(),
		Name:     name,
		Detail:   detail,
	})
}

// Mark emits an instant event under s.
func (s *Span) Mark(scope Scope, name, detail string) {
	if s == nil {
		return
	}
	Point(s.tracer, scope, name, detail, s.id)
}
