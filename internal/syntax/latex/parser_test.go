package latex

import (
	"testing"

	"quill/internal/source"
)

func parse(t *testing.T, text string) (*source.File, *Tree) {
	t.Helper()
	f := source.NewFile("main.tex", []byte(text))
	return f, Parse(f, DefaultOptions())
}

func TestParseLabels(t *testing.T) {
	f, tree := parse(t, `\section{Intro}\label{sec:intro} see \cref{sec:intro, fig:a} and \crefrange{a}{b}`)
	if len(tree.Labels) != 5 {
		t.Fatalf("expected 5 labels, got %+v", tree.Labels)
	}
	def := tree.Labels[0]
	if def.Kind != LabelDefinition || def.Name != "sec:intro" || f.Slice(def.NameSpan) != "sec:intro" {
		t.Fatalf("unexpected definition %+v", def)
	}
	if got := f.Slice(def.CommandSpan); got != `\label{sec:intro}` {
		t.Fatalf("command span covers %q", got)
	}
	names := []string{"sec:intro", "fig:a", "a", "b"}
	for i, name := range names {
		l := tree.Labels[i+1]
		if l.Kind != LabelReference || l.Name != name {
			t.Errorf("label %d = %+v, want reference %q", i+1, l, name)
		}
	}
	if got, ok := tree.LabelAt(def.NameSpan.Start + 2); !ok || got.Name != "sec:intro" {
		t.Fatalf("LabelAt = %+v, %v", got, ok)
	}
}

func TestParseCitations(t *testing.T) {
	f, tree := parse(t, `\cite[see][p.~4]{knuth, lamport} \citep*{x}\nocite{*}`)
	want := []string{"knuth", "lamport", "x", "*"}
	if len(tree.Citations) != len(want) {
		t.Fatalf("citations = %+v", tree.Citations)
	}
	for i, key := range want {
		if tree.Citations[i].Key != key {
			t.Errorf("citation %d = %q, want %q", i, tree.Citations[i].Key, key)
		}
	}
	if got := f.Slice(tree.Citations[1].KeySpan); got != "lamport" {
		t.Fatalf("key span covers %q", got)
	}
	if tree.Citations[2].Command != "citep" {
		t.Fatalf("starred command not normalised: %q", tree.Citations[2].Command)
	}
	if !tree.CitesAll() {
		t.Fatal(`expected \nocite{*} to be detected`)
	}
}

func TestParseIncludes(t *testing.T) {
	_, tree := parse(t, "\\documentclass[a4paper]{article}\n\\usepackage{amsmath,hyperref}\n"+
		"\\include{chapters/one}\\input two\n\\subimport{parts/}{three}\\bibliography{refs,more}\\addbibresource{x.bib}")
	type want struct {
		kind IncludeKind
		path string
	}
	wants := []want{
		{IncludeClass, "article"},
		{IncludePackage, "amsmath"},
		{IncludePackage, "hyperref"},
		{IncludeTex, "chapters/one"},
		{IncludeTex, "two"},
		{IncludeTex, "parts/three"},
		{IncludeBibliography, "refs"},
		{IncludeBibliography, "more"},
		{IncludeBibliography, "x.bib"},
	}
	if len(tree.Includes) != len(wants) {
		t.Fatalf("includes = %+v", tree.Includes)
	}
	for i, w := range wants {
		got := tree.Includes[i]
		if got.Kind != w.kind || got.Path != w.path {
			t.Errorf("include %d = %v %q, want %v %q", i, got.Kind, got.Path, w.kind, w.path)
		}
	}
	if IncludeBibliography.Extension() != ".bib" || IncludeTex.Extension() != ".tex" {
		t.Fatal("unexpected include extensions")
	}
}

func TestParseEnvironments(t *testing.T) {
	f, tree := parse(t, "\\begin{document}\n\\begin{figure*}x\\end{figure*}\n\\end{document}")
	if len(tree.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", tree.Errors)
	}
	if len(tree.Environments) != 2 {
		t.Fatalf("environments = %+v", tree.Environments)
	}
	doc, fig := tree.Environments[0], tree.Environments[1]
	if doc.Name != "document" || !doc.Closed || fig.Name != "figure*" || !fig.Closed {
		t.Fatalf("unexpected environments %+v", tree.Environments)
	}
	if got := f.Slice(fig.Span()); got != `\begin{figure*}x\end{figure*}` {
		t.Fatalf("figure span covers %q", got)
	}
	around := tree.EnvironmentsAround(fig.NameSpan.End + 2)
	if len(around) != 2 || around[1].Name != "figure*" {
		t.Fatalf("EnvironmentsAround = %+v", around)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ErrorCode
	}{
		{"unexpected rcurly", `a}`, []ErrorCode{ErrUnexpectedRCurly}},
		{"missing rcurly", `\textbf{a`, []ErrorCode{ErrExpectingRCurly}},
		{"mismatched", `\begin{a}\end{b}`, []ErrorCode{ErrMismatchedEnvironment}},
		{"unterminated", `\begin{a}`, []ErrorCode{ErrUnterminatedEnvironment}},
		{"stray end", `\end{a}`, []ErrorCode{ErrUnexpectedEnd}},
		{"skipped inner", `\begin{a}\begin{b}\end{a}`, []ErrorCode{ErrUnterminatedEnvironment}},
		{"label group cut by paragraph", "\\label{a\n\nb}", []ErrorCode{ErrExpectingRCurly, ErrUnexpectedRCurly}},
		{"verbatim body ignored", `\begin{verbatim}}{\end{verbatim}`, nil},
		{"unclosed verbatim", `\begin{verbatim} }`, []ErrorCode{ErrUnterminatedEnvironment}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tree := parse(t, tt.text)
			if len(tree.Errors) != len(tt.want) {
				t.Fatalf("errors = %+v, want codes %v", tree.Errors, tt.want)
			}
			for i, code := range tt.want {
				if tree.Errors[i].Code != code {
					t.Errorf("error %d = %v, want %v", i, tree.Errors[i].Code, code)
				}
			}
		})
	}
}

func TestMergeOptions(t *testing.T) {
	opts := DefaultOptions().Merge(Options{
		LabelDefinitionCommands: []string{"customlabel", "label"},
		CitationCommands:        []string{"mycite"},
	})
	_, tree := func() (*source.File, *Tree) {
		f := source.NewFile("x.tex", []byte(`\customlabel{a}\mycite{k}`))
		return f, Parse(f, opts)
	}()
	if len(tree.Labels) != 1 || tree.Labels[0].Name != "a" {
		t.Fatalf("custom label not parsed: %+v", tree.Labels)
	}
	if len(tree.Citations) != 1 || tree.Citations[0].Key != "k" {
		t.Fatalf("custom citation not parsed: %+v", tree.Citations)
	}
	count := 0
	for _, c := range opts.LabelDefinitionCommands {
		if c == "label" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("label listed %d times", count)
	}
}
