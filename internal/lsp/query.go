package lsp

import (
	"quill/internal/source"
	"quill/internal/syntax/bibtex"
	"quill/internal/syntax/latex"
	"quill/internal/workspace"
)

// target is a document together with the byte offset a request points at.
type target struct {
	doc     *workspace.Document
	offset  uint32
	project workspace.Project
}

// locate resolves a request position. The caller holds s.mu.
func (s *Server) locateLocked(rawURI string, pos position) (target, bool) {
	doc, ok := s.ws.Lookup(source.ParseURI(rawURI))
	if !ok {
		return target{}, false
	}
	return target{
		doc:     doc,
		offset:  doc.File.OffsetAt(pos),
		project: s.ws.Project(doc),
	}, true
}

type labelHit struct {
	doc   *workspace.Document
	label latex.Label
}

// labelsNamed collects every label called name in the project, in document
// order, filtered by kind.
func labelsNamed(project workspace.Project, name string, kind latex.LabelKind) []labelHit {
	var out []labelHit
	for _, doc := range project.Markup() {
		for _, l := range doc.Tree.Markup.Labels {
			if l.Kind == kind && l.Name == name {
				out = append(out, labelHit{doc: doc, label: l})
			}
		}
	}
	return out
}

type entryHit struct {
	doc   *workspace.Document
	entry *bibtex.Entry
}

// entriesKeyed finds bibliography entries with the given key in the project.
func entriesKeyed(project workspace.Project, key string) []entryHit {
	var out []entryHit
	for _, doc := range project.Bibliographies() {
		tree := doc.Tree.Bibliography
		for i := range tree.Entries {
			if tree.Entries[i].Key == key {
				out = append(out, entryHit{doc: doc, entry: &tree.Entries[i]})
			}
		}
	}
	return out
}

func locationOf(doc *workspace.Document, sp source.Span) location {
	return location{URI: string(doc.URI), Range: doc.Range(sp)}
}
