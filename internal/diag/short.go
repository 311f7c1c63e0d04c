package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"quill/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     int
	Column   int
	Message  string
}

// FormatShort renders a Set into a stable, single-line-per-entry
// representation intended for CLI short output and golden tests. Paths are
// made relative to baseDir when possible; related locations are printed as
// "note" lines when includeRelated is set.
func FormatShort(set Set, baseDir string, includeRelated bool) string {
	if set.Len() == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, set.Len())
	for uri, ds := range set {
		for i := range ds {
			rendered = appendShort(rendered, uri, &ds[i], baseDir, includeRelated)
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendShort(out []shortDiagnostic, uri source.URI, d *Diagnostic, baseDir string, includeRelated bool) []shortDiagnostic {
	out = append(out, shortDiagnostic{
		Severity: SeverityLabel(d.Severity),
		Code:     d.CodeID(),
		Path:     DisplayPath(uri, baseDir),
		Line:     d.Range.Start.Line + 1,
		Column:   d.Range.Start.Character + 1,
		Message:  sanitizeMessage(d.Message),
	})
	if includeRelated {
		for _, rel := range d.Related {
			out = append(out, shortDiagnostic{
				Severity: "note",
				Code:     d.CodeID(),
				Path:     DisplayPath(rel.URI, baseDir),
				Line:     rel.Range.Start.Line + 1,
				Column:   rel.Range.Start.Character + 1,
				Message:  sanitizeMessage(rel.Message),
			})
		}
	}
	return out
}

// DisplayPath renders uri as a path relative to baseDir, falling back to the raw URI.
func DisplayPath(uri source.URI, baseDir string) string {
	p := uri.Path()
	if p == "" {
		return string(uri)
	}
	if baseDir != "" {
		if rel, err := source.RelativePath(p, baseDir); err == nil {
			return rel
		}
	}
	return filepath.ToSlash(p)
}

// SeverityLabel is the lowercase label used by the text formats.
func SeverityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevInfo:
		return "info"
	default:
		return "hint"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
