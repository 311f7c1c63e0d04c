package diag

import (
	"slices"

	"quill/internal/source"
)

// Origin tags the analysis a diagnostic came from.
type Origin uint8

const (
	OriginUnknown Origin = iota
	OriginGrammar
	OriginChktex
	OriginBuild
	OriginCitation
	OriginLabel
)

func (o Origin) String() string {
	switch o {
	case OriginGrammar:
		return "grammar"
	case OriginChktex:
		return "chktex"
	case OriginBuild:
		return "build"
	case OriginCitation:
		return "citation"
	case OriginLabel:
		return "label"
	}
	return "unknown"
}

// Tag mirrors LSP DiagnosticTag.
type Tag uint8

const (
	TagUnnecessary Tag = 1
	TagDeprecated  Tag = 2
)

// Related points at another location that explains the diagnostic,
// e.g. the other definition of a duplicate label.
type Related struct {
	URI     source.URI
	Range   source.Range
	Message string
}

type Diagnostic struct {
	Range    source.Range
	Severity Severity
	Code     Code
	Message  string
	// External carries a code assigned by an outside tool (chktex number, TeX error class).
	External string
	Related  []Related
	Tags     []Tag
}

// Origin returns the producing analysis, derived from Code.
func (d Diagnostic) Origin() Origin {
	return d.Code.Origin()
}

// CodeID returns the external code when present, otherwise the internal ID.
func (d Diagnostic) CodeID() string {
	if d.External != "" {
		return d.External
	}
	return d.Code.ID()
}

// Equal reports structural equality.
func (d Diagnostic) Equal(other Diagnostic) bool {
	return d.Range == other.Range &&
		d.Severity == other.Severity &&
		d.Code == other.Code &&
		d.Message == other.Message &&
		d.External == other.External &&
		slices.Equal(d.Related, other.Related) &&
		slices.Equal(d.Tags, other.Tags)
}
