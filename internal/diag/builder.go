package diag

import (
	"slices"

	"quill/internal/source"
)

func New(sev Severity, code Code, rng source.Range, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Range:    rng,
		Message:  msg,
	}
}

func NewError(code Code, rng source.Range, msg string) Diagnostic {
	return New(SevError, code, rng, msg)
}

// WithRelated returns a copy of d with one more related location.
func (d Diagnostic) WithRelated(uri source.URI, rng source.Range, msg string) Diagnostic {
	d.Related = append(slices.Clone(d.Related), Related{URI: uri, Range: rng, Message: msg})
	return d
}

func (d Diagnostic) WithTag(tag Tag) Diagnostic {
	d.Tags = append(slices.Clone(d.Tags), tag)
	return d
}

// WithExternalCode returns a copy of d carrying a tool-specific code.
func (d Diagnostic) WithExternalCode(code string) Diagnostic {
	d.External = code
	return d
}
