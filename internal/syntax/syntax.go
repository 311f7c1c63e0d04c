// Package syntax ties the LaTeX and BibTeX parsers into one tagged tree type.
package syntax

import (
	"strings"

	"quill/internal/source"
	"quill/internal/syntax/bibtex"
	"quill/internal/syntax/latex"
)

// Language is the file kind of a document. It fixes the tree kind.
type Language uint8

const (
	LanguageLatex Language = iota
	LanguageBibtex
)

func (l Language) String() string {
	if l == LanguageBibtex {
		return "bibtex"
	}
	return "latex"
}

// LanguageFromPath guesses the language from a file extension.
func LanguageFromPath(path string) (Language, bool) {
	switch ext(path) {
	case ".tex", ".sty", ".cls", ".ltx", ".def", ".dtx", ".ins", ".tikz":
		return LanguageLatex, true
	case ".bib", ".bibtex":
		return LanguageBibtex, true
	}
	return LanguageLatex, false
}

// LanguageFromID maps an LSP languageId.
func LanguageFromID(id string) (Language, bool) {
	switch strings.ToLower(id) {
	case "latex", "tex", "plaintex", "context", "latex-expl3":
		return LanguageLatex, true
	case "bibtex", "bib", "biblatex":
		return LanguageBibtex, true
	}
	return LanguageLatex, false
}

func ext(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || strings.ContainsAny(path[i:], `/\`) {
		return ""
	}
	return strings.ToLower(path[i:])
}

type Kind uint8

const (
	KindMarkup Kind = iota
	KindBibliography
)

// Tree is a closed variant: exactly one of Markup and Bibliography is set,
// selected by Kind.
type Tree struct {
	Kind         Kind
	Markup       *latex.Tree
	Bibliography *bibtex.Tree
}

// Parse dispatches on the language. It never fails.
func Parse(lang Language, file *source.File, opts latex.Options) Tree {
	switch lang {
	case LanguageBibtex:
		return Tree{Kind: KindBibliography, Bibliography: bibtex.Parse(file)}
	default:
		return Tree{Kind: KindMarkup, Markup: latex.Parse(file, opts)}
	}
}
