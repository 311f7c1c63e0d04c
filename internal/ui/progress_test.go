package ui

import (
	"errors"
	"strings"
	"testing"

	"quill/internal/pipeline"
)

func TestApplyEvent(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("quill check", []string{"main.tex", "refs.bib"}, events).(*progressModel)

	m.applyEvent(pipeline.Event{Stage: pipeline.StageAnalyze, Status: pipeline.StatusWorking})
	if m.stageLabel != "analyzing" {
		t.Fatalf("unexpected stage label %q", m.stageLabel)
	}

	m.applyEvent(pipeline.Event{File: "main.tex", Stage: pipeline.StageChktex, Status: pipeline.StatusWorking})
	if got := m.items[0].status; got != "linting" {
		t.Fatalf("unexpected status %q", got)
	}
	if got := m.percent(); got != 0.4 {
		t.Fatalf("unexpected percent %v", got)
	}

	m.applyEvent(pipeline.Event{File: "refs.bib", Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: errors.New("boom")})
	m.applyEvent(pipeline.Event{File: "refs.bib", Stage: pipeline.StageAnalyze, Status: pipeline.StatusDone})
	if m.items[1].status != "error" || m.failures != 1 {
		t.Fatalf("a failed file must stay failed: %+v failures=%d", m.items[1], m.failures)
	}

	m.applyEvent(pipeline.Event{File: "unknown.tex", Status: pipeline.StatusDone})
	if !strings.Contains(m.View(), "1 file(s) failed") {
		t.Fatalf("expected failure count in view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		value string
		width int
		want  string
	}{
		{value: "chapters/intro.tex", width: 40, want: "chapters/intro.tex"},
		{value: "chapters/intro.tex", width: 10, want: "chapter..."},
		{value: "abcdef", width: 2, want: "ab"},
	}
	for _, tc := range cases {
		if got := truncate(tc.value, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.value, tc.width, got, tc.want)
		}
	}
}
