package trace

import (
	"bufio"
	"io"
	"sync"
	"time"
)

const defaultRingSize = 4096

// RingTracer keeps the most recent events in memory. The CLI dumps it when
// a command panics; nothing is written otherwise.
type RingTracer struct {
	mu      sync.Mutex
	buf     []Event
	next    int // слот для следующего события
	count   int
	level   Level
	started time.Time
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{
		buf:     make([]Event, capacity),
		level:   level,
		started: time.Now(),
	}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	t.buf[t.next] = *ev
	t.buf[t.next].Seq = NextSeq()
	t.next = (t.next + 1) % len(t.buf)
	if t.count < len(t.buf) {
		t.count++
	}
	t.mu.Unlock()
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, t.count)
	first := (t.next - t.count + len(t.buf)) % len(t.buf)
	for i := range t.count {
		out = append(out, t.buf[(first+i)%len(t.buf)])
	}
	return out
}

// Dump writes the retained events in format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	if format == FormatAuto {
		format = FormatText
	}
	bw := bufio.NewWriter(w)
	for _, ev := range t.Snapshot() {
		if _, err := bw.Write(FormatEvent(&ev, format, t.started)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
