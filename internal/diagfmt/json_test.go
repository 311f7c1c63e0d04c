package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/observ"
	"quill/internal/source"
)

func sampleSet() diag.Set {
	main := source.URIFromPath("/ws/main.tex")
	bib := source.URIFromPath("/ws/refs.bib")
	set := diag.Set{}
	set.Add(main, diag.NewError(diag.LblDuplicate, span(3, 7, 10), "Duplicate label").
		WithRelated(main, span(1, 7, 10), "first defined here"))
	set.Add(bib, diag.New(diag.SevHint, diag.CitUnusedEntry, span(0, 6, 11), "Unused entry").
		WithTag(diag.TagUnnecessary))
	set.Add(main, diag.New(diag.SevWarning, diag.ChkFinding, span(0, 0, 2), "Command terminated with space.").
		WithExternalCode("1"))
	return set
}

func TestBuildDiagnosticsOutput(t *testing.T) {
	out := BuildDiagnosticsOutput(sampleSet(), JSONOpts{BaseDir: "/ws", IncludeRelated: true})
	if out.Count != 3 || out.Omitted != 0 {
		t.Fatalf("unexpected counts: %+v", out)
	}

	first := out.Diagnostics[0]
	if first.Location.File != "main.tex" || first.Code != "1" || first.Source != "chktex" || first.Severity != "warning" {
		t.Fatalf("unexpected first diagnostic: %+v", first)
	}
	dup := out.Diagnostics[1]
	if dup.Location != (LocationJSON{File: "main.tex", StartLine: 4, StartCol: 8, EndLine: 4, EndCol: 11}) {
		t.Fatalf("unexpected location: %+v", dup.Location)
	}
	if len(dup.Related) != 1 || dup.Related[0].Location.StartLine != 2 {
		t.Fatalf("unexpected related: %+v", dup.Related)
	}
	unused := out.Diagnostics[2]
	if unused.Location.File != "refs.bib" || len(unused.Tags) != 1 || unused.Tags[0] != "unnecessary" {
		t.Fatalf("unexpected bib diagnostic: %+v", unused)
	}
}

func TestBuildDiagnosticsOutputMax(t *testing.T) {
	out := BuildDiagnosticsOutput(sampleSet(), JSONOpts{Max: 2})
	if out.Count != 2 || out.Omitted != 1 {
		t.Fatalf("expected 2 kept and 1 omitted, got %+v", out)
	}
	if out.Diagnostics[1].Related != nil {
		t.Fatalf("related must be omitted unless requested: %+v", out.Diagnostics[1])
	}
}

func TestJSONEncoding(t *testing.T) {
	out := BuildDiagnosticsOutput(sampleSet(), JSONOpts{PathMode: PathModeBasename})
	out.Timings = &observ.Report{TotalMS: 1.5, Phases: []observ.PhaseReport{{Name: "load", DurationMS: 1.5}}}

	var buf bytes.Buffer
	if err := JSON(&buf, out); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["count"] != float64(3) {
		t.Fatalf("unexpected count: %v", decoded["count"])
	}
	if _, ok := decoded["omitted"]; ok {
		t.Fatal("omitted must not be encoded when zero")
	}
	if !strings.Contains(buf.String(), `"total_ms": 1.5`) {
		t.Fatalf("expected timings in output:\n%s", buf.String())
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, sampleSet(), JSONOpts{BaseDir: "/ws", Max: 2}); err != nil {
		t.Fatalf("short: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if lines[0] != "warning 1 main.tex:1:1 Command terminated with space." {
		t.Fatalf("unexpected first line %q", lines[0])
	}

	buf.Reset()
	if err := Short(&buf, diag.Set{}, JSONOpts{}); err != nil || buf.Len() != 0 {
		t.Fatalf("expected no output for an empty set, got %q (%v)", buf.String(), err)
	}
}
