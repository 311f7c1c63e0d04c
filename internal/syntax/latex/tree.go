package latex

import (
	"quill/internal/source"
)

type LabelKind uint8

const (
	LabelDefinition LabelKind = iota
	LabelReference
)

func (k LabelKind) String() string {
	if k == LabelDefinition {
		return "definition"
	}
	return "reference"
}

// Label is one name inside a \label or reference command.
type Label struct {
	Kind        LabelKind
	Name        string
	NameSpan    source.Span
	Command     string
	CommandSpan source.Span
}

// Citation is one key inside a citation command. \nocite{*} yields Key "*".
type Citation struct {
	Key         string
	KeySpan     source.Span
	Command     string
	CommandSpan source.Span
}

type IncludeKind uint8

const (
	IncludeTex IncludeKind = iota
	IncludeBibliography
	IncludePackage
	IncludeClass
)

// Extension is the file extension implied by the include command.
func (k IncludeKind) Extension() string {
	switch k {
	case IncludeBibliography:
		return ".bib"
	case IncludePackage:
		return ".sty"
	case IncludeClass:
		return ".cls"
	default:
		return ".tex"
	}
}

// Include is one target path of an include-like command.
type Include struct {
	Kind        IncludeKind
	Path        string
	PathSpan    source.Span
	Command     string
	CommandSpan source.Span
}

// Environment is a \begin{name} ... \end{name} pair. When the environment is
// never closed End is zero and Closed is false.
type Environment struct {
	Name     string
	NameSpan source.Span
	Begin    source.Span // \begin{name}
	End      source.Span // \end{name}
	Closed   bool
}

// Span covers the whole environment.
func (e Environment) Span() source.Span {
	if !e.Closed {
		return e.Begin
	}
	return e.Begin.Cover(e.End)
}

type ErrorCode uint8

const (
	ErrUnexpectedRCurly ErrorCode = iota + 1
	ErrExpectingRCurly
	ErrMismatchedEnvironment
	ErrUnterminatedEnvironment
	ErrUnexpectedEnd
)

// Error is a recoverable structural problem found while parsing.
type Error struct {
	Code ErrorCode
	Span source.Span
	// Name is the environment involved, when any.
	Name string
}

// Tree is the structural summary of a LaTeX document. Slices are in source order.
type Tree struct {
	Labels       []Label
	Citations    []Citation
	Includes     []Include
	Environments []Environment
	Errors       []Error
}

// LabelAt returns the label whose name span contains off.
func (t *Tree) LabelAt(off uint32) (Label, bool) {
	for _, l := range t.Labels {
		if l.NameSpan.Contains(off) {
			return l, true
		}
	}
	return Label{}, false
}

// CitationAt returns the citation whose key span contains off.
func (t *Tree) CitationAt(off uint32) (Citation, bool) {
	for _, c := range t.Citations {
		if c.KeySpan.Contains(off) {
			return c, true
		}
	}
	return Citation{}, false
}

// EnvironmentsAround returns the environments containing off, innermost last.
func (t *Tree) EnvironmentsAround(off uint32) []Environment {
	var out []Environment
	for _, env := range t.Environments {
		if env.Closed && env.Span().Contains(off) {
			out = append(out, env)
		}
	}
	return out
}

// CitesAll reports whether the document contains \nocite{*}.
func (t *Tree) CitesAll() bool {
	for _, c := range t.Citations {
		if c.Key == "*" {
			return true
		}
	}
	return false
}
