package trace

import (
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a liveness event at a fixed interval. In a dump, a
// request span that has heartbeats after its begin but no end is the one
// that hung.
type Heartbeat struct {
	tracer Tracer
	ticker *time.Ticker
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// StartHeartbeat returns nil when the tracer is off or interval is not
// positive; Stop on a nil Heartbeat is a no-op.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer: tracer,
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer close(h.exited)
	gid := goroutineID()
	for beat := 1; ; beat++ {
		select {
		case at := <-h.ticker.C:
			h.tracer.Emit(&Event{
				Time:   at,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeServer,
				GID:    gid,
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(beat),
			})
		case <-h.done:
			return
		}
	}
}

// Stop ends the loop and waits for it. Safe to call more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
	<-h.exited
}
