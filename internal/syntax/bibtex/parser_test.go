package bibtex

import (
	"testing"

	"quill/internal/source"
)

func parse(text string) (*source.File, *Tree) {
	f := source.NewFile("refs.bib", []byte(text))
	return f, Parse(f)
}

func TestParseEntries(t *testing.T) {
	f, tree := parse(`
junk before entries
@String{tug = "TeX Users {Group}"}
@Article{knuth84,
  Title   = {The {\TeX}book},
  publisher = tug # ", " # "Portland",
  year    = 1984,
  month   = jul
}
@comment{ @book{ignored, title={x}} }
@book(lamport, title = "LaTeX")
`)
	if len(tree.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", tree.Errors)
	}
	if len(tree.Entries) != 2 {
		t.Fatalf("entries = %+v", tree.Entries)
	}
	e := tree.Entries[0]
	if e.Type != "article" || e.Key != "knuth84" || f.Slice(e.KeySpan) != "knuth84" {
		t.Fatalf("unexpected entry head %+v", e)
	}
	checks := map[string]string{
		"title":     `The \TeXbook`,
		"publisher": "TeX Users Group, Portland",
		"year":      "1984",
		"month":     "July",
	}
	for name, want := range checks {
		field, ok := e.Field(name)
		if !ok || field.Value != want {
			t.Errorf("field %s = %q (found=%v), want %q", name, field.Value, ok, want)
		}
	}
	if _, ok := e.Field("TITLE"); !ok {
		t.Fatal("field lookup must be case-insensitive")
	}
	if tree.Entries[1].Key != "lamport" || tree.Entries[1].Type != "book" {
		t.Fatalf("parenthesised entry = %+v", tree.Entries[1])
	}
	if len(tree.Strings) != 1 || tree.Strings[0].Value != "TeX Users Group" {
		t.Fatalf("strings = %+v", tree.Strings)
	}
	if len(tree.StringRefs) != 2 {
		t.Fatalf("string refs = %+v", tree.StringRefs)
	}
	if got, ok := tree.Lookup("lamport"); !ok || got.Type != "book" {
		t.Fatal("Lookup failed")
	}
	titleOff := e.Fields[0].NameSpan.Start + 1
	if field, ok := tree.FieldNameAt(titleOff); !ok || field.Name != "title" {
		t.Fatalf("FieldNameAt = %+v, %v", field, ok)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ErrorCode
	}{
		{"missing lcurly", "@article", []ErrorCode{ErrExpectingLCurly}},
		{"missing key", "@article{, title={x}}", []ErrorCode{ErrExpectingKey}},
		{"missing rcurly", "@article{a, title={x}\n@book{b,}", []ErrorCode{ErrExpectingRCurly}},
		{"missing eq", "@article{a, title {x}}", []ErrorCode{ErrExpectingEq}},
		{"missing value", "@article{a, title = }", []ErrorCode{ErrExpectingFieldValue}},
		{"unterminated group", "@article{a, title = {x", []ErrorCode{ErrExpectingRCurly, ErrExpectingRCurly}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tree := parse(tt.text)
			if len(tree.Errors) != len(tt.want) {
				t.Fatalf("errors = %+v, want %v", tree.Errors, tt.want)
			}
			for i, code := range tt.want {
				if tree.Errors[i].Code != code {
					t.Errorf("error %d = %v, want %v", i, tree.Errors[i].Code, code)
				}
			}
		})
	}
}

func TestEntriesWithoutKeyAreDropped(t *testing.T) {
	_, tree := parse("@article{, title={x}}\n@misc{ok}")
	if len(tree.Entries) != 1 || tree.Entries[0].Key != "ok" {
		t.Fatalf("entries = %+v", tree.Entries)
	}
}
