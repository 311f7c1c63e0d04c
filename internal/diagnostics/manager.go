package diagnostics

import (
	"context"
	"maps"
	"slices"
	"strconv"

	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/trace"
	"quill/internal/workspace"
)

// ManagerOptions configures a Manager. The zero value is usable: build logs
// are looked up on disk and tracing is off.
type ManagerOptions struct {
	BuildLogs BuildLogSource
	Tracer    trace.Tracer
}

// Manager owns the diagnostic stores of one workspace.
type Manager struct {
	grammar diag.Set
	// chktex holds the last complete result per document.
	chktex map[source.URI][]diag.Diagnostic
	// buildLog is keyed by the document that produced the log, then by the
	// document each entry is about.
	buildLog map[source.URI]diag.Set

	logs   BuildLogSource
	tracer trace.Tracer
}

// NewManager returns an empty manager; build logs default to the file system.
func NewManager(opts ManagerOptions) *Manager {
	logs := opts.BuildLogs
	if logs == nil {
		logs = FileBuildLogSource{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Manager{
		grammar:  make(diag.Set),
		chktex:   make(map[source.URI][]diag.Diagnostic),
		buildLog: make(map[source.URI]diag.Set),
		logs:     logs,
		tracer:   tracer,
	}
}

// WithTracer returns m after switching its tracer; a context without a
// tracer leaves it unchanged.
func (m *Manager) WithTracer(ctx context.Context) *Manager {
	if t := trace.FromContext(ctx); t.Enabled() {
		m.tracer = t
	}
	return m
}

// IsRelevant reports whether doc takes part in diagnostics at all.
func IsRelevant(doc *workspace.Document) bool {
	switch doc.Owner {
	case workspace.OwnerClient, workspace.OwnerServer:
		return true
	case workspace.OwnerDistro:
		return false
	}
	return false
}

// UpdateSyntax recomputes the diagnostics derived from doc's syntax tree
// and build log. ws must already contain doc. Only entries keyed by
// doc.URI are touched.
func (m *Manager) UpdateSyntax(ws *workspace.Workspace, doc *workspace.Document) {
	if !IsRelevant(doc) {
		return
	}
	span := trace.Begin(m.tracer, trace.ScopeDocument, "diagnostics.update_syntax", 0)
	defer span.Attr("uri", string(doc.URI)).End("")

	delete(m.grammar, doc.URI)
	rep := diag.SetReporter{Set: m.grammar}
	checkLatexGrammar(doc, ws.Config(), rep)
	checkBibtexGrammar(doc, rep)

	delete(m.buildLog, doc.URI)
	if found := collectBuildLog(ws, doc, m.logs); len(found) > 0 {
		m.buildLog[doc.URI] = found
	}
}

// UpdateChktex replaces the chktex findings stored for uri.
func (m *Manager) UpdateChktex(uri source.URI, diags []diag.Diagnostic) {
	m.chktex[uri] = diags
}

// Get assembles every diagnostic for the current workspace state. The
// result is freshly allocated; diagnostics of one URI keep the order in
// which the stages below produced them.
func (m *Manager) Get(ws *workspace.Workspace) diag.Set {
	span := trace.Begin(m.tracer, trace.ScopeRequest, "diagnostics.get", 0)
	results := make(diag.Set)

	for uri, ds := range m.grammar {
		results.AddAll(uri, ds)
	}
	// производители лога в стабильном порядке
	for _, producer := range slices.Sorted(maps.Keys(m.buildLog)) {
		results.Merge(m.buildLog[producer])
	}
	for uri, ds := range m.chktex {
		if doc, ok := ws.Lookup(uri); ok && doc.Owner == workspace.OwnerClient {
			results.AddAll(uri, ds)
		}
	}

	rep := diag.SetReporter{Set: results}
	stage := span.Child(trace.ScopeNode, "diagnostics.citations")
	projects := ws.Projects()
	for _, doc := range ws.Iter() {
		if !IsRelevant(doc) {
			continue
		}
		project := projects[doc.URI]
		detectUndefinedCitations(project, doc, rep)
		detectUnusedEntries(project, doc, rep)
	}

	detectDuplicateEntries(ws, rep)
	stage.End("")

	stage = span.Child(trace.ScopeNode, "diagnostics.labels")
	detectDuplicateLabels(ws, projects, rep)
	detectUndefinedAndUnusedLabels(ws, projects, rep)
	stage.End("")

	results.Retain(func(uri source.URI) bool {
		doc, ok := ws.Lookup(uri)
		return ok && IsRelevant(doc)
	})
	filterByPatterns(results, ws.Config())

	span.Attr("diagnostics", strconv.Itoa(results.Len())).End("")
	return results
}
