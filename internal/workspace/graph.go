package workspace

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"quill/internal/source"
	"quill/internal/syntax/latex"
)

// NodeID indexes Graph.Docs.
type NodeID int

// Graph is the include graph of the current workspace state. It is rebuilt
// on every request and never cached across edits.
type Graph struct {
	Docs  []*Document // sorted by URI
	Index map[source.URI]NodeID
	Edges [][]NodeID // Edges[from] = []to, sorted, без дублей
	Back  [][]NodeID // обратные рёбра
}

// Graph builds the include graph. Edges point from the including document to
// every included document that resolves to a workspace member.
func (w *Workspace) Graph() *Graph {
	docs := w.Iter()
	g := &Graph{
		Docs:  docs,
		Index: make(map[source.URI]NodeID, len(docs)),
		Edges: make([][]NodeID, len(docs)),
		Back:  make([][]NodeID, len(docs)),
	}
	for i, doc := range docs {
		g.Index[doc.URI] = NodeID(i)
	}
	for from, doc := range docs {
		if !doc.IsMarkup() {
			continue
		}
		seen := make(map[NodeID]struct{})
		for _, inc := range doc.Tree.Markup.Includes {
			target, ok := w.resolveInclude(doc, inc)
			if !ok {
				continue
			}
			to := g.Index[target.URI]
			if int(to) == from {
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			g.Edges[from] = append(g.Edges[from], to)
			g.Back[to] = append(g.Back[to], NodeID(from))
		}
		slices.Sort(g.Edges[from])
	}
	for i := range g.Back {
		slices.Sort(g.Back[i])
	}
	return g
}

// reach returns every node reachable from start along next, start included.
func (g *Graph) reach(start []NodeID, next [][]NodeID) []bool {
	seen := make([]bool, len(g.Docs))
	stack := slices.Clone(start)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		for _, m := range next[n] {
			if !seen[m] {
				stack = append(stack, m)
			}
		}
	}
	return seen
}

// resolveInclude finds the workspace document an include points to.
func (w *Workspace) resolveInclude(doc *Document, inc latex.Include) (*Document, bool) {
	for _, cand := range w.includeCandidates(doc, inc) {
		if target, ok := w.docs[cand]; ok {
			return target, true
		}
	}
	if uri, ok := w.distroURI(inc); ok {
		if target, ok := w.docs[uri]; ok {
			return target, true
		}
	}
	return nil, false
}

// distroURI asks the distribution resolver for the include's file name.
func (w *Workspace) distroURI(inc latex.Include) (source.URI, bool) {
	if w.distro == nil || w.cfg.Distro.Disabled {
		return "", false
	}
	name := path.Base(filepath.ToSlash(inc.Path))
	if path.Ext(name) == "" {
		name += inc.Kind.Extension()
	}
	p, ok := w.distro.Resolve(name)
	if !ok {
		return "", false
	}
	return source.URIFromPath(p), true
}

// includeCandidates lists the URIs an include may refer to, in priority
// order: relative to the configured root directory, the including
// document's directory and the workspace root, each with and without the
// extension implied by the command.
func (w *Workspace) includeCandidates(doc *Document, inc latex.Include) []source.URI {
	target := strings.TrimSpace(inc.Path)
	if target == "" {
		return nil
	}
	names := []string{target}
	if ext := inc.Kind.Extension(); !strings.EqualFold(path.Ext(target), ext) {
		names = append(names, target+ext)
	}

	var bases []source.URI
	if dir := w.cfg.RootDirectory; dir != "" {
		bases = append(bases, source.URIFromPath(dir))
	}
	bases = append(bases, doc.URI.Dir())
	if w.root != "" {
		bases = append(bases, w.root)
	}

	out := make([]source.URI, 0, len(bases)*len(names))
	seen := make(map[source.URI]struct{})
	for _, base := range bases {
		for _, name := range names {
			uri := base.Join(name)
			if _, dup := seen[uri]; dup {
				continue
			}
			seen[uri] = struct{}{}
			out = append(out, uri)
		}
	}
	return out
}
