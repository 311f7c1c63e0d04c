package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"quill/internal/source"
	"quill/internal/syntax/latex"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	s.mu.Lock()
	result := s.buildHoverLocked(params.TextDocument.URI, params.Position)
	s.mu.Unlock()
	return s.sendResponse(msg.ID, result)
}

func (s *Server) buildHoverLocked(uri string, pos position) *hover {
	t, ok := s.locateLocked(uri, pos)
	if !ok {
		return nil
	}
	switch {
	case t.doc.IsBibliography():
		return hoverBibField(t)
	case t.doc.IsMarkup():
		tree := t.doc.Tree.Markup
		if label, ok := tree.LabelAt(t.offset); ok {
			return hoverLabel(t, label)
		}
		if cite, ok := tree.CitationAt(t.offset); ok {
			return hoverCitation(t, cite)
		}
	}
	return nil
}

func hoverBibField(t target) *hover {
	field, ok := t.doc.Tree.Bibliography.FieldNameAt(t.offset)
	if !ok {
		return nil
	}
	doc, ok := bibFieldDocs[field.Name]
	if !ok {
		return nil
	}
	return markdownHover(t, field.NameSpan, doc)
}

func hoverLabel(t target, label latex.Label) *hover {
	defs := labelsNamed(t.project, label.Name, latex.LabelDefinition)
	if len(defs) == 0 {
		return nil
	}
	def := defs[0]
	line := def.doc.File.PositionAt(def.label.NameSpan.Start).Line
	var b strings.Builder
	fmt.Fprintf(&b, "Label `%s`", label.Name)
	if env := innermostEnvironment(def.doc.Tree.Markup, def.label.NameSpan.Start); env != "" {
		fmt.Fprintf(&b, " in `%s`", env)
	}
	fmt.Fprintf(&b, "\n\n%s:%d", def.doc.URI.Base(), line+1)
	return markdownHover(t, label.NameSpan, b.String())
}

func hoverCitation(t target, cite latex.Citation) *hover {
	hits := entriesKeyed(t.project, cite.Key)
	if len(hits) == 0 {
		return nil
	}
	entry := hits[0].entry
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** `%s`", entry.Type, entry.Key)
	if title, ok := entry.Field("title"); ok && title.Value != "" {
		fmt.Fprintf(&b, "\n\n%s", title.Value)
	}
	return markdownHover(t, cite.KeySpan, b.String())
}

func innermostEnvironment(tree *latex.Tree, off uint32) string {
	envs := tree.EnvironmentsAround(off)
	if len(envs) == 0 {
		return ""
	}
	return envs[len(envs)-1].Name
}

func markdownHover(t target, sp source.Span, value string) *hover {
	rng := t.doc.Range(sp)
	return &hover{
		Contents: markupContent{Kind: "markdown", Value: value},
		Range:    &rng,
	}
}
