package observ

import (
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(time.Millisecond)

	load := timer.Begin("load")
	timer.End(load, "3 files")
	timer.Measure("analyze", func() string { return "" })
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %+v", report.Phases)
	}
	if report.TotalMS != 2 {
		t.Fatalf("expected 2ms total, got %v", report.TotalMS)
	}
	p, ok := report.Phase("load")
	if !ok || p.Note != "3 files" || p.DurationMS != 1 {
		t.Fatalf("unexpected load phase: %+v", p)
	}
	if _, ok := report.Phase("chktex"); ok {
		t.Fatal("unexpected chktex phase")
	}
}

func TestTimerSummary(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(time.Millisecond)
	timer.End(timer.Begin("discover"), "1 included")

	got := timer.Summary()
	for _, want := range []string{"timings:", "discover", "(1 included)", "total"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary %q does not contain %q", got, want)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	timer.Measure("load", func() string { return "" })
	if r := timer.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer must record nothing, got %+v", r)
	}
}
