package lsp

import (
	"encoding/json"
	"slices"
	"strings"

	"quill/internal/source"
	"quill/internal/syntax/latex"
	"quill/internal/workspace"
)

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	s.mu.Lock()
	result := s.buildCompletionLocked(params.TextDocument.URI, params.Position)
	s.mu.Unlock()
	return s.sendResponse(msg.ID, result)
}

type argKind uint8

const (
	argNone argKind = iota
	argLabel
	argCitation
)

// argContext describes the brace argument the cursor is in.
type argContext struct {
	kind    argKind
	command string
	// word is the comma-separated item around the cursor.
	word source.Span
}

func (s *Server) buildCompletionLocked(uri string, pos position) completionList {
	empty := completionList{IsIncomplete: false, Items: []completionItem{}}
	t, ok := s.locateLocked(uri, pos)
	if !ok || !t.doc.IsMarkup() {
		return empty
	}
	opts := s.ws.Config().Syntax.LatexOptions()
	ctx, ok := argumentAt(t.doc.File.Content, t.offset, opts)
	if !ok {
		return empty
	}
	rng := t.doc.Range(ctx.word)
	var items []completionItem
	switch ctx.kind {
	case argLabel:
		items = labelCompletions(t.project, rng)
	case argCitation:
		items = citationCompletions(t.project, rng)
	}
	if items == nil {
		return empty
	}
	return completionList{IsIncomplete: false, Items: items}
}

func labelCompletions(project workspace.Project, rng lspRange) []completionItem {
	seen := make(map[string]struct{})
	var items []completionItem
	for _, doc := range project.Markup() {
		for _, l := range doc.Tree.Markup.Labels {
			if l.Kind != latex.LabelDefinition || l.Name == "" {
				continue
			}
			if _, dup := seen[l.Name]; dup {
				continue
			}
			seen[l.Name] = struct{}{}
			items = append(items, completionItem{
				Label:    l.Name,
				Kind:     completionItemKindReference,
				Detail:   doc.URI.Base(),
				TextEdit: &textEdit{Range: rng, NewText: l.Name},
			})
		}
	}
	slices.SortFunc(items, func(a, b completionItem) int { return strings.Compare(a.Label, b.Label) })
	return items
}

func citationCompletions(project workspace.Project, rng lspRange) []completionItem {
	seen := make(map[string]struct{})
	var items []completionItem
	for _, doc := range project.Bibliographies() {
		for _, e := range doc.Tree.Bibliography.Entries {
			if e.Key == "" {
				continue
			}
			if _, dup := seen[e.Key]; dup {
				continue
			}
			seen[e.Key] = struct{}{}
			detail := e.Type
			if title, ok := e.Field("title"); ok && title.Value != "" {
				detail += ": " + title.Value
			}
			items = append(items, completionItem{
				Label:    e.Key,
				Kind:     completionItemKindText,
				Detail:   detail,
				TextEdit: &textEdit{Range: rng, NewText: e.Key},
			})
		}
	}
	slices.SortFunc(items, func(a, b completionItem) int { return strings.Compare(a.Label, b.Label) })
	return items
}

// argumentAt scans backwards from off for an unclosed "{" on the same
// paragraph and checks that it opens the argument of a label reference or
// citation command. Optional [..] arguments between the command and the
// brace are skipped.
func argumentAt(text []byte, off uint32, opts latex.Options) (argContext, bool) {
	if int(off) > len(text) {
		return argContext{}, false
	}
	open := -1
	for i := int(off) - 1; i >= 0; i-- {
		c := text[i]
		if c == '}' || c == '\\' || c == '%' {
			return argContext{}, false
		}
		if c == '\n' && i > 0 && text[i-1] == '\n' {
			return argContext{}, false
		}
		if c == '{' {
			open = i
			break
		}
	}
	if open < 0 {
		return argContext{}, false
	}
	name, ok := commandBefore(text, open)
	if !ok {
		return argContext{}, false
	}
	var kind argKind
	switch {
	case slices.Contains(opts.LabelReferenceCommands, name),
		slices.Contains(opts.LabelReferenceRangeCommands, name):
		kind = argLabel
	case slices.Contains(opts.CitationCommands, name):
		kind = argCitation
	default:
		return argContext{}, false
	}

	start := int(off)
	for start > open+1 && !isItemBreak(text[start-1]) {
		start--
	}
	end := int(off)
	for end < len(text) && !isItemBreak(text[end]) && text[end] != '}' {
		end++
	}
	for start < end && text[start] == ' ' {
		start++
	}
	return argContext{
		kind:    kind,
		command: name,
		word:    source.Span{Start: source.ClampOffset(start), End: source.ClampOffset(end)},
	}, true
}

// commandBefore returns the command name preceding the brace at open,
// skipping whitespace, optional arguments and earlier mandatory ones (the
// second argument of \crefrange).
func commandBefore(text []byte, open int) (string, bool) {
	i := open - 1
	for {
		for i >= 0 && (text[i] == ' ' || text[i] == '\t') {
			i--
		}
		if i < 0 {
			return "", false
		}
		var left byte
		switch text[i] {
		case ']':
			left = '['
		case '}':
			left = '{'
		}
		if left == 0 {
			break
		}
		right := text[i]
		depth := 0
		for ; i >= 0; i-- {
			if text[i] == right {
				depth++
			} else if text[i] == left {
				depth--
				if depth == 0 {
					i--
					break
				}
			}
		}
	}
	// звёздочка у \cite*
	if i >= 0 && text[i] == '*' {
		i--
	}
	end := i + 1
	for i >= 0 && isLetter(text[i]) {
		i--
	}
	if i < 0 || text[i] != '\\' || i+1 == end {
		return "", false
	}
	return string(text[i+1 : end]), true
}

func isItemBreak(c byte) bool {
	return c == ',' || c == '{' || c == '\n'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '@'
}
