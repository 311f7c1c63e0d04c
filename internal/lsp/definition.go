package lsp

import (
	"encoding/json"

	"quill/internal/syntax/latex"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params definitionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	s.mu.Lock()
	result := s.buildDefinitionLocked(params.TextDocument.URI, params.Position)
	s.mu.Unlock()
	return s.sendResponse(msg.ID, result)
}

// buildDefinitionLocked maps a label reference to its definitions and a
// citation key to its bibliography entries.
func (s *Server) buildDefinitionLocked(uri string, pos position) []location {
	t, ok := s.locateLocked(uri, pos)
	if !ok || !t.doc.IsMarkup() {
		return []location{}
	}
	tree := t.doc.Tree.Markup
	out := []location{}
	if label, ok := tree.LabelAt(t.offset); ok {
		for _, hit := range labelsNamed(t.project, label.Name, latex.LabelDefinition) {
			out = append(out, locationOf(hit.doc, hit.label.NameSpan))
		}
		return out
	}
	if cite, ok := tree.CitationAt(t.offset); ok {
		for _, hit := range entriesKeyed(t.project, cite.Key) {
			out = append(out, locationOf(hit.doc, hit.entry.KeySpan))
		}
	}
	return out
}

func (s *Server) handleReferences(msg *rpcMessage) error {
	var params referenceParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	s.mu.Lock()
	result := s.buildReferencesLocked(params.TextDocument.URI, params.Position, params.Context.IncludeDeclaration)
	s.mu.Unlock()
	return s.sendResponse(msg.ID, result)
}

// buildReferencesLocked lists every reference to the label under the
// cursor across the project, plus its definitions when asked to.
func (s *Server) buildReferencesLocked(uri string, pos position, includeDecl bool) []location {
	t, ok := s.locateLocked(uri, pos)
	if !ok || !t.doc.IsMarkup() {
		return []location{}
	}
	label, ok := t.doc.Tree.Markup.LabelAt(t.offset)
	if !ok {
		return []location{}
	}
	out := []location{}
	if includeDecl {
		for _, hit := range labelsNamed(t.project, label.Name, latex.LabelDefinition) {
			out = append(out, locationOf(hit.doc, hit.label.NameSpan))
		}
	}
	for _, hit := range labelsNamed(t.project, label.Name, latex.LabelReference) {
		out = append(out, locationOf(hit.doc, hit.label.NameSpan))
	}
	return out
}
