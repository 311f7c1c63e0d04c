package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/source"
)

type fileMap map[source.URI]*source.File

func (m fileMap) File(uri source.URI) *source.File {
	return m[uri]
}

func span(line, start, end int) source.Range {
	return source.Range{
		Start: source.Position{Line: line, Character: start},
		End:   source.Position{Line: line, Character: end},
	}
}

func fixture(text string) (source.URI, fileMap) {
	uri := source.URIFromPath("/ws/main.tex")
	return uri, fileMap{uri: source.NewFile("/ws/main.tex", []byte(text))}
}

func TestPrettyExcerpt(t *testing.T) {
	uri, files := fixture("See \\ref{missing}.\n")
	set := diag.Set{}
	set.Add(uri, diag.NewError(diag.LblUndefined, span(0, 4, 17), "Undefined reference"))

	var buf bytes.Buffer
	if err := Pretty(&buf, set, files, PrettyOpts{BaseDir: "/ws"}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	want := "main.tex:1:5: ERROR LBL6001: Undefined reference\n" +
		"1 | See \\ref{missing}.\n" +
		"  |     ^" + strings.Repeat("~", 12) + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyCaretAlignment(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		rng   source.Range
		pad   int
		width int
	}{
		{name: "wide runes", text: "日本 \\ref{x}\n", rng: span(0, 3, 10), pad: 5, width: 7},
		{name: "tab stop", text: "\t\\ref{x}\n", rng: span(0, 1, 8), pad: 4, width: 7},
		{name: "empty range", text: "\\begin{a}\n", rng: span(0, 9, 9), pad: 9, width: 1},
		{
			name:  "multi-line range stops at line end",
			text:  "\\begin{a}\nx\n",
			rng:   source.Range{End: source.Position{Line: 1, Character: 1}},
			pad:   0,
			width: 9,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uri, files := fixture(tc.text)
			set := diag.Set{}
			set.Add(uri, diag.NewError(diag.GrmExpectingRCurly, tc.rng, "msg"))
			var buf bytes.Buffer
			if err := Pretty(&buf, set, files, PrettyOpts{}); err != nil {
				t.Fatalf("pretty: %v", err)
			}
			lines := strings.Split(buf.String(), "\n")
			if len(lines) < 3 {
				t.Fatalf("unexpected output:\n%s", buf.String())
			}
			want := "  | " + strings.Repeat(" ", tc.pad) + "^" + strings.Repeat("~", tc.width-1)
			if lines[2] != want {
				t.Fatalf("caret line %q, want %q", lines[2], want)
			}
		})
	}
}

func TestPrettyRelatedAndMax(t *testing.T) {
	uri, files := fixture("\\label{a}\n\\label{a}\n")
	set := diag.Set{}
	set.Add(uri, diag.NewError(diag.LblDuplicate, span(1, 7, 8), "Duplicate label").
		WithRelated(uri, span(0, 7, 8), "first defined here"))
	set.Add(uri, diag.NewError(diag.LblDuplicate, span(0, 7, 8), "Duplicate label").
		WithRelated(uri, span(1, 7, 8), "also defined here"))

	var buf bytes.Buffer
	if err := Pretty(&buf, set, files, PrettyOpts{BaseDir: "/ws", ShowRelated: true, Max: 1, Context: 1}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "ERROR") != 1 {
		t.Fatalf("expected one diagnostic, got:\n%s", out)
	}
	if !strings.HasPrefix(out, "main.tex:1:8:") {
		t.Fatalf("expected the first position to win, got:\n%s", out)
	}
	if !strings.Contains(out, "note: main.tex:2:8: also defined here") {
		t.Fatalf("expected related note, got:\n%s", out)
	}
	if !strings.Contains(out, "2 | \\label{a}") {
		t.Fatalf("expected context line, got:\n%s", out)
	}
}

func TestPrettyWithoutFiles(t *testing.T) {
	set := diag.Set{}
	set.Add(source.URIFromPath("/ws/refs.bib"), diag.New(diag.SevWarning, diag.CitUnusedEntry, span(0, 6, 9), "Unused entry"))
	var buf bytes.Buffer
	if err := Pretty(&buf, set, nil, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if buf.String() != "refs.bib:1:7: WARNING CIT5002: Unused entry\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestSummary(t *testing.T) {
	uri := source.URIFromPath("/ws/main.tex")
	set := diag.Set{}
	if got := Summary(set); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
	set.Add(uri, diag.NewError(diag.LblUndefined, span(0, 0, 1), "a"))
	set.Add(uri, diag.NewError(diag.LblUndefined, span(1, 0, 1), "b"))
	set.Add(uri, diag.New(diag.SevWarning, diag.LblUnused, span(2, 0, 1), "c"))
	if got := Summary(set); got != "2 errors, 1 warning" {
		t.Fatalf("unexpected summary %q", got)
	}
}
