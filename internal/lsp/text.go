package lsp

import (
	"quill/internal/source"
)

// applyChanges replays content changes in order. A change without a range
// replaces the whole text; ranged changes are clamped to the text.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		// текст нормализуется так же, как документ, поэтому позиции совпадают
		file := source.NewFile("", []byte(text))
		text = file.Text()
		start := int(file.OffsetAt(change.Range.Start))
		end := int(file.OffsetAt(change.Range.End))
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}
