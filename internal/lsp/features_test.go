package lsp

import (
	"path/filepath"
	"strings"
	"testing"

	"quill/internal/source"
	"quill/internal/syntax/latex"
)

type fixture struct {
	server *Server
	main   source.URI
	chap   source.URI
	bib    source.URI
}

const (
	mainText = "\\documentclass{article}\n" +
		"\\begin{document}\n" +
		"\\input{chapter}\n" +
		"See \\ref{sec:intro} and \\cite{knuth84}.\n" +
		"\\bibliography{refs}\n" +
		"\\end{document}\n"
	chapText = "\\section{Intro}\\label{sec:intro}\n" +
		"\\begin{figure}\n" +
		"  \\caption{Plot}\\label{fig:plot}\n" +
		"\\end{figure}\n" +
		"Back to \\ref{sec:intro}.\n"
	bibText = "@book{knuth84,\n" +
		"  author = {Donald E. Knuth},\n" +
		"  title = {The {\\TeX}book},\n" +
		"}\n"
)

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	server, _ := newTestServer(t, ServerOptions{})
	f := fixture{
		server: server,
		main:   source.URIFromPath(filepath.Join(dir, "main.tex")),
		chap:   source.URIFromPath(filepath.Join(dir, "chapter.tex")),
		bib:    source.URIFromPath(filepath.Join(dir, "refs.bib")),
	}
	openDoc(t, server, f.chap, "latex", chapText)
	openDoc(t, server, f.bib, "bibtex", bibText)
	openDoc(t, server, f.main, "latex", mainText)
	return f
}

func TestDefinitionOfLabelReference(t *testing.T) {
	f := newFixture(t)
	pos := positionOf(t, mainText, "\\ref{sec:in", 0)

	f.server.mu.Lock()
	locs := f.server.buildDefinitionLocked(string(f.main), pos)
	f.server.mu.Unlock()

	if len(locs) != 1 {
		t.Fatalf("expected 1 location, got %+v", locs)
	}
	want := lspRange{
		Start: positionOf(t, chapText, "\\label{", 0),
		End:   positionOf(t, chapText, "\\label{sec:intro", 0),
	}
	if locs[0].URI != string(f.chap) || locs[0].Range != want {
		t.Fatalf("unexpected location: %+v", locs[0])
	}
}

func TestDefinitionOfCitation(t *testing.T) {
	f := newFixture(t)
	pos := positionOf(t, mainText, "\\cite{knu", 0)

	f.server.mu.Lock()
	locs := f.server.buildDefinitionLocked(string(f.main), pos)
	f.server.mu.Unlock()

	if len(locs) != 1 || locs[0].URI != string(f.bib) {
		t.Fatalf("expected the bibliography entry, got %+v", locs)
	}
	if locs[0].Range.Start != (position{Line: 0, Character: len("@book{")}) {
		t.Fatalf("unexpected range: %+v", locs[0].Range)
	}
}

func TestReferencesAcrossProject(t *testing.T) {
	f := newFixture(t)
	pos := positionOf(t, chapText, "\\label{sec:", 0)

	cases := []struct {
		name        string
		includeDecl bool
		want        int
	}{
		{name: "references only", includeDecl: false, want: 2},
		{name: "with declaration", includeDecl: true, want: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.server.mu.Lock()
			locs := f.server.buildReferencesLocked(string(f.chap), pos, tc.includeDecl)
			f.server.mu.Unlock()
			if len(locs) != tc.want {
				t.Fatalf("expected %d locations, got %+v", tc.want, locs)
			}
			uris := map[string]int{}
			for _, loc := range locs {
				uris[loc.URI]++
			}
			if uris[string(f.main)] != 1 {
				t.Fatalf("expected one reference in main.tex, got %+v", locs)
			}
		})
	}
}

func TestHover(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		uri  source.URI
		pos  position
		want []string
	}{
		{
			name: "label",
			uri:  f.main,
			pos:  positionOf(t, mainText, "\\ref{sec:", 0),
			want: []string{"Label `sec:intro`", "chapter.tex:1"},
		},
		{
			name: "label inside environment",
			uri:  f.chap,
			pos:  positionOf(t, chapText, "\\label{fig:", 0),
			want: []string{"Label `fig:plot` in `figure`"},
		},
		{
			name: "citation",
			uri:  f.main,
			pos:  positionOf(t, mainText, "\\cite{kn", 0),
			want: []string{"**book** `knuth84`", "The"},
		},
		{
			name: "bib field",
			uri:  f.bib,
			pos:  positionOf(t, bibText, "aut", 0),
			want: []string{"author(s)"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.server.mu.Lock()
			h := f.server.buildHoverLocked(string(tc.uri), tc.pos)
			f.server.mu.Unlock()
			if h == nil {
				t.Fatal("expected hover")
			}
			for _, w := range tc.want {
				if !strings.Contains(h.Contents.Value, w) {
					t.Fatalf("hover %q does not contain %q", h.Contents.Value, w)
				}
			}
			if h.Contents.Kind != "markdown" || h.Range == nil {
				t.Fatalf("unexpected hover shape: %+v", h)
			}
		})
	}
}

func TestHoverOnPlainTextIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.server.mu.Lock()
	defer f.server.mu.Unlock()
	if h := f.server.buildHoverLocked(string(f.main), position{Line: 3, Character: 1}); h != nil {
		t.Fatalf("expected no hover, got %+v", h)
	}
}

func TestLabelCompletion(t *testing.T) {
	f := newFixture(t)
	text := "\\ref{fi}\n"
	uri := source.URIFromPath(filepath.Join(filepath.Dir(f.chap.Path()), "extra.tex"))
	// extra.tex is only related to the project through chapter.tex
	openDoc(t, f.server, f.chap, "latex", chapText+"\\input{extra}\n")
	openDoc(t, f.server, uri, "latex", text)

	f.server.mu.Lock()
	list := f.server.buildCompletionLocked(string(uri), positionOf(t, text, "\\ref{fi", 0))
	f.server.mu.Unlock()

	var labels []string
	for _, item := range list.Items {
		labels = append(labels, item.Label)
		if item.TextEdit == nil || item.TextEdit.Range.Start.Character != 5 || item.TextEdit.Range.End.Character != 7 {
			t.Fatalf("unexpected edit range for %s: %+v", item.Label, item.TextEdit)
		}
	}
	if strings.Join(labels, ",") != "fig:plot,sec:intro" {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestCitationCompletion(t *testing.T) {
	f := newFixture(t)
	text := mainText + "\\cite[p.~3]{knuth84, }\n"
	openDoc(t, f.server, f.main, "latex", text)

	f.server.mu.Lock()
	list := f.server.buildCompletionLocked(string(f.main), positionOf(t, text, "knuth84, ", 0))
	f.server.mu.Unlock()

	if len(list.Items) != 1 || list.Items[0].Label != "knuth84" {
		t.Fatalf("expected knuth84, got %+v", list.Items)
	}
	if !strings.HasPrefix(list.Items[0].Detail, "book") {
		t.Fatalf("unexpected detail %q", list.Items[0].Detail)
	}
}

func TestArgumentAt(t *testing.T) {
	opts := latex.DefaultOptions()
	cases := []struct {
		name    string
		text    string
		cursor  string
		kind    argKind
		command string
		word    string
	}{
		{name: "empty ref", text: `\ref{}`, cursor: `\ref{`, kind: argLabel, command: "ref"},
		{name: "partial ref", text: `\cref{sec:a,fig:b}`, cursor: `\cref{sec:a,fig`, kind: argLabel, command: "cref", word: "fig:b"},
		{name: "range ref", text: `\crefrange{a}{b}`, cursor: `\crefrange{a}{`, kind: argLabel, command: "crefrange", word: "b"},
		{name: "cite with options", text: `\parencite[see][12]{key}`, cursor: `\parencite[see][12]{k`, kind: argCitation, command: "parencite", word: "key"},
		{name: "spaced cite item", text: `\cite{a, b}`, cursor: `\cite{a, b`, kind: argCitation, command: "cite", word: "b"},
		{name: "other command", text: `\section{Intro}`, cursor: `\section{In`},
		{name: "after closing brace", text: `\ref{a} text`, cursor: `\ref{a} te`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			off := source.ClampOffset(len(tc.cursor))
			ctx, ok := argumentAt([]byte(tc.text), off, opts)
			if tc.kind == argNone {
				if ok {
					t.Fatalf("expected no argument context, got %+v", ctx)
				}
				return
			}
			if !ok {
				t.Fatal("expected argument context")
			}
			if ctx.kind != tc.kind || ctx.command != tc.command {
				t.Fatalf("unexpected context: %+v", ctx)
			}
			if got := tc.text[ctx.word.Start:ctx.word.End]; got != tc.word {
				t.Fatalf("expected word %q, got %q", tc.word, got)
			}
		})
	}
}

func TestFoldingRanges(t *testing.T) {
	f := newFixture(t)

	f.server.mu.Lock()
	ranges := f.server.buildFoldingRangesLocked(string(f.chap))
	bibRanges := f.server.buildFoldingRangesLocked(string(f.bib))
	f.server.mu.Unlock()

	if len(ranges) != 1 {
		t.Fatalf("expected one folding range, got %+v", ranges)
	}
	r := ranges[0]
	if r.StartLine != 1 || *r.StartCharacter != len("\\begin{figure}") || r.EndLine != 3 || *r.EndCharacter != 0 {
		t.Fatalf("unexpected folding range: %+v (%d..%d)", r, *r.StartCharacter, *r.EndCharacter)
	}
	if len(bibRanges) != 0 {
		t.Fatalf("bibliographies have no folding ranges, got %+v", bibRanges)
	}
}
