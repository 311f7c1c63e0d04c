package diagnostics

import (
	"quill/internal/diag"
	"quill/internal/workspace"
)

// entryKeys collects the keys of every bibliography entry in the project.
func entryKeys(project workspace.Project) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, bib := range project.Bibliographies() {
		for _, e := range bib.Tree.Bibliography.Entries {
			keys[e.Key] = struct{}{}
		}
	}
	return keys
}

// detectUndefinedCitations reports citation keys of doc that no entry in
// the project defines. \nocite{*} is not a key.
func detectUndefinedCitations(project workspace.Project, doc *workspace.Document, rep diag.Reporter) {
	if !doc.IsMarkup() || len(doc.Tree.Markup.Citations) == 0 {
		return
	}
	keys := entryKeys(project)
	for _, c := range doc.Tree.Markup.Citations {
		if c.Key == "*" {
			continue
		}
		if _, ok := keys[c.Key]; ok {
			continue
		}
		diag.ReportError(rep, doc.URI, diag.CitUndefined, doc.Range(c.KeySpan), "Undefined reference").Emit()
	}
}

// detectUnusedEntries reports entries of the bibliography doc that no
// document of the project cites. \nocite{*} anywhere marks everything as
// used.
func detectUnusedEntries(project workspace.Project, doc *workspace.Document, rep diag.Reporter) {
	if !doc.IsBibliography() || len(doc.Tree.Bibliography.Entries) == 0 {
		return
	}
	cited := make(map[string]struct{})
	for _, m := range project.Markup() {
		if m.Tree.Markup.CitesAll() {
			return
		}
		for _, c := range m.Tree.Markup.Citations {
			cited[c.Key] = struct{}{}
		}
	}
	for _, e := range doc.Tree.Bibliography.Entries {
		if _, ok := cited[e.Key]; ok {
			continue
		}
		diag.ReportHint(rep, doc.URI, diag.CitUnusedEntry, doc.Range(e.KeySpan), "Unused entry").
			WithTag(diag.TagUnnecessary).
			Emit()
	}
}

// detectDuplicateEntries reports entry keys defined more than once within
// one bibliography file. Every occurrence is reported and points at the
// others.
func detectDuplicateEntries(ws *workspace.Workspace, rep diag.Reporter) {
	for _, doc := range ws.Iter() {
		if !IsRelevant(doc) || !doc.IsBibliography() {
			continue
		}
		entries := doc.Tree.Bibliography.Entries
		byKey := make(map[string][]int)
		var order []string
		for i, e := range entries {
			if _, seen := byKey[e.Key]; !seen {
				order = append(order, e.Key)
			}
			byKey[e.Key] = append(byKey[e.Key], i)
		}
		for _, key := range order {
			group := byKey[key]
			if len(group) < 2 {
				continue
			}
			for _, i := range group {
				b := diag.ReportError(rep, doc.URI, diag.CitDuplicateEntry, doc.Range(entries[i].KeySpan), "Duplicate entry key")
				for _, j := range group {
					if j != i {
						b.WithRelated(doc.URI, doc.Range(entries[j].KeySpan), "entry defined here")
					}
				}
				b.Emit()
			}
		}
	}
}
