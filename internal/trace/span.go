package trace

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var (
	eventSeq atomic.Uint64
	spanSeq  atomic.Uint64
)

// NextSeq returns the next global event number.
func NextSeq() uint64 { return eventSeq.Add(1) }

// NextSpanID returns a fresh span identifier; zero is never returned.
func NextSpanID() uint64 { return spanSeq.Add(1) }

// goroutineID parses the header line of runtime.Stack ("goroutine 17 [running]:").
// Only used to tell interleaved requests apart in text dumps.
func goroutineID() uint64 {
	var buf [64]byte
	header := string(buf[:runtime.Stack(buf[:], false)])
	fields := strings.Fields(strings.TrimPrefix(header, "goroutine "))
	if len(fields) == 0 {
		return 0
	}
	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Span measures one unit of work: a request, the analysis of a document,
// one stage of diagnostics collection. A Span from a disabled tracer is
// inert, so callers never check before using it.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	gid     uint64
	scope   Scope
	name    string
	started time.Time
	attrs   map[string]string
}

var inert = &Span{tracer: Nop}

// Begin starts a span below parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent,
		gid:     goroutineID(),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

// Child starts a span nested in s on the same tracer.
func (s *Span) Child(scope Scope, name string) *Span {
	if s == nil || s.id == 0 {
		return inert
	}
	return Begin(s.tracer, scope, name, s.id)
}

// Attr records key=value on the end event.
func (s *Span) Attr(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.attrs == nil {
		s.attrs = make(map[string]string, 2)
	}
	s.attrs[key] = value
	return s
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.attrs
	}
	return ev
}
