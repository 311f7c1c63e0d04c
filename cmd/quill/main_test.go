package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"quill/internal/config"
	"quill/internal/diagfmt"
	"quill/internal/observ"
	"quill/internal/pipeline"
	"quill/internal/version"
)

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		in   string
		want uiMode
		err  bool
	}{
		{in: "", want: uiModeAuto},
		{in: " ON ", want: uiModeOn},
		{in: "off", want: uiModeOff},
		{in: "sometimes", err: true},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.in)
		if tc.err {
			if err == nil {
				t.Fatalf("readUIMode(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if !useTUI(uiModeAuto, true) || useTUI(uiModeAuto, false) {
		t.Fatal("auto mode must follow the terminal")
	}
	if !useTUI(uiModeOn, false) || useTUI(uiModeOff, true) {
		t.Fatal("explicit modes must win")
	}
}

func TestResolveColor(t *testing.T) {
	if on, _ := resolveColor("auto", false); on {
		t.Fatal("auto without a terminal must disable color")
	}
	if on, _ := resolveColor("on", false); !on {
		t.Fatal("on must force color")
	}
	if _, err := resolveColor("rainbow", true); err == nil {
		t.Fatal("expected error for unknown value")
	}
}

func TestRenderVersion(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })
	color.NoColor = true

	info := versionInfo{Version: version.Version}
	var pretty bytes.Buffer
	renderVersionPretty(&pretty, info, versionOptions{showHash: true})
	want := "quill " + version.Version + ": " + versionTagline + "\ncommit: unknown\n"
	if pretty.String() != want {
		t.Fatalf("pretty output:\n%q\nwant\n%q", pretty.String(), want)
	}

	var raw bytes.Buffer
	if err := renderVersionJSON(&raw, versionInfo{Version: "1.2.3", BuildDate: "2026-01-02"}, versionOptions{showDate: true}); err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal(raw.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "quill" || payload.Version != "1.2.3" || payload.BuildDate != "2026-01-02" || payload.GitCommit != "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestRunInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "thesis")
	var out bytes.Buffer
	initCmd.SetOut(&out)
	t.Cleanup(func() { initCmd.SetOut(nil) })

	if err := runInit(initCmd, []string{dir}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if !strings.Contains(out.String(), config.FileName) {
		t.Fatalf("unexpected output %q", out.String())
	}
	if err := runInit(initCmd, []string{dir}); err == nil {
		t.Fatal("second init must fail")
	}
}

func TestWriteDiagnosticsJSON(t *testing.T) {
	dir := t.TempDir()
	doc := "\\documentclass{article}\n\\begin{document}\nSee \\ref{missing}.\n\\end{document}\n"
	if err := os.WriteFile(filepath.Join(dir, "main.tex"), []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	target, err := pipeline.ResolveTarget(dir)
	if err != nil {
		t.Fatal(err)
	}
	res, err := pipeline.Check(context.Background(), &pipeline.CheckRequest{Target: target})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	opts := checkOptions{format: "json", related: true, timings: true}
	if err := writeDiagnostics(&out, res, target, opts); err != nil {
		t.Fatal(err)
	}
	var decoded diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out.String())
	}
	if decoded.Count != res.Diagnostics.Len() || decoded.Timings == nil {
		t.Fatalf("unexpected output: %+v", decoded)
	}
	for _, d := range decoded.Diagnostics {
		if d.Location.File != "main.tex" {
			t.Fatalf("expected paths relative to the target, got %q", d.Location.File)
		}
	}
}

func TestPrintTimings(t *testing.T) {
	var out bytes.Buffer
	printTimings(&out, observ.Report{})
	if out.Len() != 0 {
		t.Fatalf("empty report must print nothing, got %q", out.String())
	}
	printTimings(&out, observ.Report{
		TotalMS: 3,
		Phases:  []observ.PhaseReport{{Name: "load", DurationMS: 3, Note: "2 files"}},
	})
	want := "load            3.0 ms  2 files\ntotal           3.0 ms\n"
	if out.String() != want {
		t.Fatalf("timings:\n%q\nwant\n%q", out.String(), want)
	}
}
