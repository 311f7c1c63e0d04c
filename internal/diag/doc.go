// Package diag defines the diagnostic model shared by every analysis.
//
// # Data model
//
// Diagnostic is an immutable value with structural equality. It contains:
//
//   - Range – LSP range (zero-based line, UTF-16 character) in the owning document.
//   - Severity – Hint, Info, Warning or Error (severity.go).
//   - Code – compact numeric identifier (codes.go). The code range also
//     determines the Origin: grammar, chktex, build, citation or label.
//   - Message – human oriented text. Allow/deny filters match against it.
//   - External – optional code assigned by an outside tool.
//   - Related – other locations that explain the finding.
//   - Tags – LSP tags such as TagUnnecessary.
//
// Diagnostics do not carry their URI. Producers emit them through a Reporter
// together with the URI they belong to; Set is the map-shaped sink used by
// the diagnostics manager.
//
// # Emitting diagnostics
//
//	diag.ReportError(r, uri, diag.LblDuplicate, rng, "Duplicate label").
//		WithRelated(other, otherRange, "label defined here").
//		Emit()
//
// DedupReporter drops repeated reports of the same finding, which happens
// when a workspace-wide analysis visits overlapping projects.
//
// Package diag does not perform formatting beyond the short one-line form
// used in golden tests; the pretty and JSON formats live in internal/diagfmt.
package diag
