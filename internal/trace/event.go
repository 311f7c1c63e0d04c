package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeServer   Scope = iota + 1 // initialize, shutdown, workspace loading
	ScopeRequest                   // one client request or notification
	ScopeDocument                  // analysis of a single document
	ScopeNode                      // analyzer internals
)

func (s Scope) String() string {
	switch s {
	case ScopeServer:
		return "server"
	case ScopeRequest:
		return "request"
	case ScopeDocument:
		return "document"
	case ScopeNode:
		return "node"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	GID      uint64
	Name     string // "textDocument/didChange", "diagnostics.get", a document URI
	Detail   string
	Extra    map[string]string
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Seq:    NextSeq(),
		Kind:   KindPoint,
		Scope:  scope,
		GID:    goroutineID(),
		Name:   name,
		Detail: detail,
	})
}
