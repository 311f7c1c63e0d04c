package lsp

import (
	"encoding/json"
	"slices"

	"quill/internal/source"
)

func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	s.mu.Lock()
	ranges := s.buildFoldingRangesLocked(params.TextDocument.URI)
	s.mu.Unlock()
	return s.sendResponse(msg.ID, ranges)
}

// buildFoldingRangesLocked returns one region per closed environment,
// from the end of \begin{..} to the start of \end{..}. Bibliographies
// have none.
func (s *Server) buildFoldingRangesLocked(uri string) []foldingRange {
	doc, ok := s.ws.Lookup(source.ParseURI(uri))
	if !ok || !doc.IsMarkup() {
		return []foldingRange{}
	}
	ranges := make([]foldingRange, 0, len(doc.Tree.Markup.Environments))
	for _, env := range doc.Tree.Markup.Environments {
		if !env.Closed {
			continue
		}
		start := doc.File.PositionAt(env.Begin.End)
		end := doc.File.PositionAt(env.End.Start)
		ranges = append(ranges, foldingRange{
			StartLine:      start.Line,
			StartCharacter: &start.Character,
			EndLine:        end.Line,
			EndCharacter:   &end.Character,
		})
	}
	slices.SortStableFunc(ranges, func(a, b foldingRange) int {
		if a.StartLine != b.StartLine {
			return a.StartLine - b.StartLine
		}
		return a.EndLine - b.EndLine
	})
	return ranges
}
