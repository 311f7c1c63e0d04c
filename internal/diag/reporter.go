package diag

import "quill/internal/source"

// Reporter: минимальный контракт получения диагностик от анализаторов.
// Реализации: SetReporter (кладёт в Set), DedupReporter.
type Reporter interface {
	Report(uri source.URI, d Diagnostic)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	uri      source.URI
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, uri source.URI, sev Severity, code Code, rng source.Range, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		uri:      uri,
		diag:     New(sev, code, rng, msg),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, uri source.URI, code Code, rng source.Range, msg string) *ReportBuilder {
	return NewReportBuilder(r, uri, SevError, code, rng, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, uri source.URI, code Code, rng source.Range, msg string) *ReportBuilder {
	return NewReportBuilder(r, uri, SevWarning, code, rng, msg)
}

// ReportHint is a shortcut for SevHint diagnostics.
func ReportHint(r Reporter, uri source.URI, code Code, rng source.Range, msg string) *ReportBuilder {
	return NewReportBuilder(r, uri, SevHint, code, rng, msg)
}

// WithRelated appends a related location.
func (b *ReportBuilder) WithRelated(uri source.URI, rng source.Range, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithRelated(uri, rng, msg)
	return b
}

// WithTag appends an LSP tag.
func (b *ReportBuilder) WithTag(tag Tag) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithTag(tag)
	return b
}

// WithExternal sets the tool-specific code.
func (b *ReportBuilder) WithExternal(code string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithExternalCode(code)
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.uri, b.diag)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// SetReporter: адаптер, который пишет в Set.
type SetReporter struct{ Set Set }

func (r SetReporter) Report(uri source.URI, d Diagnostic) {
	if r.Set == nil {
		return
	}
	r.Set.Add(uri, d)
}
