package diagnostics

import (
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/syntax/latex"
	"quill/internal/workspace"
)

type labelSite struct {
	doc   *workspace.Document
	label latex.Label
}

// labelIndex groups the labels of every markup document in a project by name.
type labelIndex struct {
	defs map[string][]labelSite
	refs map[string]struct{}
}

func indexLabels(project workspace.Project) labelIndex {
	idx := labelIndex{
		defs: make(map[string][]labelSite),
		refs: make(map[string]struct{}),
	}
	for _, doc := range project.Markup() {
		for _, l := range doc.Tree.Markup.Labels {
			switch l.Kind {
			case latex.LabelDefinition:
				idx.defs[l.Name] = append(idx.defs[l.Name], labelSite{doc: doc, label: l})
			case latex.LabelReference:
				idx.refs[l.Name] = struct{}{}
			}
		}
	}
	return idx
}

// projectIndexes builds one label index per distinct project.
func projectIndexes(projects map[source.URI]workspace.Project) func(source.URI) labelIndex {
	cache := make(map[string]labelIndex)
	return func(uri source.URI) labelIndex {
		p := projects[uri]
		key := p.Key()
		idx, ok := cache[key]
		if !ok {
			idx = indexLabels(p)
			cache[key] = idx
		}
		return idx
	}
}

// detectDuplicateLabels reports every label definition whose name is
// defined more than once in the document's project. Related information
// points at the other definitions.
func detectDuplicateLabels(ws *workspace.Workspace, projects map[source.URI]workspace.Project, rep diag.Reporter) {
	index := projectIndexes(projects)
	for _, doc := range ws.Iter() {
		if !IsRelevant(doc) || !doc.IsMarkup() {
			continue
		}
		idx := index(doc.URI)
		for _, l := range doc.Tree.Markup.Labels {
			if l.Kind != latex.LabelDefinition {
				continue
			}
			sites := idx.defs[l.Name]
			if len(sites) < 2 {
				continue
			}
			b := diag.ReportError(rep, doc.URI, diag.LblDuplicate, doc.Range(l.NameSpan), "Duplicate label")
			for _, other := range sites {
				if other.doc.URI == doc.URI && other.label.NameSpan == l.NameSpan {
					continue
				}
				b.WithRelated(other.doc.URI, other.doc.Range(other.label.NameSpan), "label defined here")
			}
			b.Emit()
		}
	}
}

// detectUndefinedAndUnusedLabels reports references without a definition
// and definitions without a reference, both resolved over the project.
func detectUndefinedAndUnusedLabels(ws *workspace.Workspace, projects map[source.URI]workspace.Project, rep diag.Reporter) {
	index := projectIndexes(projects)
	for _, doc := range ws.Iter() {
		if !IsRelevant(doc) || !doc.IsMarkup() {
			continue
		}
		idx := index(doc.URI)
		for _, l := range doc.Tree.Markup.Labels {
			switch l.Kind {
			case latex.LabelReference:
				if _, ok := idx.defs[l.Name]; !ok {
					diag.ReportError(rep, doc.URI, diag.LblUndefined, doc.Range(l.NameSpan), "Undefined reference").Emit()
				}
			case latex.LabelDefinition:
				if _, ok := idx.refs[l.Name]; !ok {
					diag.ReportHint(rep, doc.URI, diag.LblUnused, doc.Range(l.NameSpan), "Unused label").
						WithTag(diag.TagUnnecessary).
						Emit()
				}
			}
		}
	}
}
