package trace

import (
	"io"
	"sync"
	"time"
)

// StreamTracer writes every event as soon as it is emitted. Write errors
// are dropped: tracing must never break the server.
type StreamTracer struct {
	mu      sync.Mutex
	w       io.Writer
	level   Level
	format  Format
	started time.Time
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{
		w:       w,
		level:   level,
		format:  format,
		started: time.Now(),
	}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format, t.started)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.w.Write(data) //nolint:errcheck
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	if syncer, ok := t.w.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}

// Close flushes and closes the writer unless it is stderr or stdout.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if isStdStream(t.w) {
		return nil
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
