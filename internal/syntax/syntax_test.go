package syntax

import (
	"testing"

	"quill/internal/source"
	"quill/internal/syntax/latex"
)

func TestLanguageDetection(t *testing.T) {
	tests := []struct {
		path string
		lang Language
		ok   bool
	}{
		{"/a/main.tex", LanguageLatex, true},
		{"/a/pkg.STY", LanguageLatex, true},
		{"/a/refs.bib", LanguageBibtex, true},
		{"/a.dir/README", LanguageLatex, false},
		{"/a/notes.md", LanguageLatex, false},
	}
	for _, tt := range tests {
		lang, ok := LanguageFromPath(tt.path)
		if lang != tt.lang || ok != tt.ok {
			t.Errorf("LanguageFromPath(%q) = %v, %v; want %v, %v", tt.path, lang, ok, tt.lang, tt.ok)
		}
	}
	if lang, ok := LanguageFromID("BibTeX"); !ok || lang != LanguageBibtex {
		t.Fatal("LanguageFromID(BibTeX) failed")
	}
}

func TestParseSelectsVariant(t *testing.T) {
	tex := Parse(LanguageLatex, source.NewFile("a.tex", []byte(`\label{x}`)), latex.DefaultOptions())
	if tex.Kind != KindMarkup || tex.Markup == nil || tex.Bibliography != nil {
		t.Fatalf("unexpected markup tree %+v", tex)
	}
	bib := Parse(LanguageBibtex, source.NewFile("a.bib", []byte(`@misc{x}`)), latex.DefaultOptions())
	if bib.Kind != KindBibliography || bib.Bibliography == nil || bib.Markup != nil {
		t.Fatalf("unexpected bibliography tree %+v", bib)
	}
}
