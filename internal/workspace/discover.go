package workspace

import (
	"quill/internal/source"
	"quill/internal/syntax/latex"
)

// Discover loads include targets that are not yet part of the workspace,
// repeating until no new document appears. Targets found next to the
// sources are loaded as OwnerServer; packages, classes and bibliographies
// found only in the distribution are loaded as OwnerDistro. Includes of
// distribution documents are not followed.
// It returns the URIs of the newly loaded documents.
func (w *Workspace) Discover() []source.URI {
	var added []source.URI
	tried := make(map[source.URI]struct{})
	for {
		progress := false
		for _, doc := range w.Iter() {
			if doc.Owner == OwnerDistro || !doc.IsMarkup() {
				continue
			}
			for _, inc := range doc.Tree.Markup.Includes {
				if _, ok := w.resolveInclude(doc, inc); ok {
					continue
				}
				if uri, ok := w.discoverOne(doc, inc, tried); ok {
					added = append(added, uri)
					progress = true
				}
			}
		}
		if !progress {
			return added
		}
	}
}

func (w *Workspace) discoverOne(doc *Document, inc latex.Include, tried map[source.URI]struct{}) (source.URI, bool) {
	for _, cand := range w.includeCandidates(doc, inc) {
		if _, seen := tried[cand]; seen {
			continue
		}
		tried[cand] = struct{}{}
		p := cand.Path()
		if p == "" || !fileExists(p) {
			continue
		}
		if loaded, err := w.Load(p, OwnerServer); err == nil {
			return loaded.URI, true
		}
	}

	uri, ok := w.distroURI(inc)
	if !ok {
		return "", false
	}
	if _, seen := tried[uri]; seen {
		return "", false
	}
	tried[uri] = struct{}{}
	if _, exists := w.docs[uri]; exists {
		return "", false
	}
	loaded, err := w.Load(uri.Path(), OwnerDistro)
	if err != nil {
		return "", false
	}
	return loaded.URI, true
}
