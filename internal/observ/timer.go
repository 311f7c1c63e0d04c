// Package observ measures how long the stages of a check run take.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one timed step of a run.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases in the order they were begun. A nil *Timer is a
// valid timer that records nothing.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 8), now: time.Now}
}

// Begin starts a phase and returns its handle for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End finishes the phase idx. Unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
}

// Measure runs fn as a phase named name; fn's result becomes the note.
func (t *Timer) Measure(name string, fn func() string) {
	idx := t.Begin(name)
	t.End(idx, fn())
}

// Summary renders the phases as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  (" + p.Note + ")")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-12s %8.2f ms\n", "total", report.TotalMS)
	return b.String()
}

// PhaseReport: сериализуемое описание одной фазы.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report агрегирует все фазы таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Phase returns the first phase named name.
func (r Report) Phase(name string) (PhaseReport, bool) {
	for _, p := range r.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return PhaseReport{}, false
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
