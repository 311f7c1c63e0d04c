package workspace

import (
	"quill/internal/source"
)

// Project is a view over the documents that share one include closure.
// It is computed on demand and never cached.
type Project struct {
	Documents []*Document // sorted by URI
}

// Contains reports whether uri is a member of the project.
func (p Project) Contains(uri source.URI) bool {
	for _, doc := range p.Documents {
		if doc.URI == uri {
			return true
		}
	}
	return false
}

// Markup returns the LaTeX members.
func (p Project) Markup() []*Document {
	var out []*Document
	for _, doc := range p.Documents {
		if doc.IsMarkup() {
			out = append(out, doc)
		}
	}
	return out
}

// Bibliographies returns the BibTeX members.
func (p Project) Bibliographies() []*Document {
	var out []*Document
	for _, doc := range p.Documents {
		if doc.IsBibliography() {
			out = append(out, doc)
		}
	}
	return out
}

// Key identifies the member set; two projects with equal keys are the same view.
func (p Project) Key() string {
	n := 0
	for _, doc := range p.Documents {
		n += len(doc.URI) + 1
	}
	b := make([]byte, 0, n)
	for _, doc := range p.Documents {
		b = append(b, doc.URI...)
		b = append(b, '\n')
	}
	return string(b)
}

// Project returns doc, every document that transitively includes it, and
// every document transitively included by any of those. The closure is
// bidirectional so that a label defined in a child is visible to the parent
// and to sibling files.
func (w *Workspace) Project(doc *Document) Project {
	return w.projectIn(w.Graph(), doc)
}

func (w *Workspace) projectIn(g *Graph, doc *Document) Project {
	id, ok := g.Index[doc.URI]
	if !ok {
		return Project{Documents: []*Document{doc}}
	}
	ancestors := g.reach([]NodeID{id}, g.Back)
	var start []NodeID
	for i, in := range ancestors {
		if in {
			start = append(start, NodeID(i))
		}
	}
	members := g.reach(start, g.Edges)
	out := Project{}
	for i, in := range members {
		if in {
			out.Documents = append(out.Documents, g.Docs[i])
		}
	}
	return out
}

// Projects returns the project of every document in one graph pass.
func (w *Workspace) Projects() map[source.URI]Project {
	g := w.Graph()
	out := make(map[source.URI]Project, len(g.Docs))
	for _, doc := range g.Docs {
		out[doc.URI] = w.projectIn(g, doc)
	}
	return out
}

// Parents returns the root documents (those nobody includes) whose closure
// contains doc. A document that is not included anywhere is its own parent.
func (w *Workspace) Parents(doc *Document) []*Document {
	g := w.Graph()
	id, ok := g.Index[doc.URI]
	if !ok {
		return []*Document{doc}
	}
	ancestors := g.reach([]NodeID{id}, g.Back)
	var out []*Document
	for i, in := range ancestors {
		if in && len(g.Back[i]) == 0 {
			out = append(out, g.Docs[i])
		}
	}
	if len(out) == 0 {
		// цикл включений без корня
		out = append(out, doc)
	}
	return out
}

// Related is the document list of doc's project.
func (w *Workspace) Related(doc *Document) []*Document {
	return w.Project(doc).Documents
}
