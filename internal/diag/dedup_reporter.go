package diag

import "quill/internal/source"

type dedupKey struct {
	uri  source.URI
	code Code
	sev  Severity
	rng  source.Range
	msg  string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same URI, code, severity, range and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(uri source.URI, d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{
		uri:  uri,
		code: d.Code,
		sev:  d.Severity,
		rng:  d.Range,
		msg:  d.Message,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(uri, d)
	}
}
