package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
)

const maxUint32 = ^uint32(0)

// NewFile builds a File from in-memory text, stripping a BOM and normalizing CRLF.
func NewFile(path string, content []byte) *File {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileVirtual
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
}

// LoadFile reads a file from disk and normalizes it like NewFile.
func LoadFile(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := NewFile(path, content)
	f.Flags &^= FileVirtual
	return f, nil
}

// Text returns the document content as a string.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return string(f.Content)
}

// Slice returns the text covered by span, clamped to the content.
func (f *File) Slice(span Span) string {
	n := f.size()
	start, end := min(span.Start, n), min(span.End, n)
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}

// LineCount returns the number of lines, counting a trailing empty line.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	start, end, ok := f.lineBounds(int(lineNum) - 1)
	if !ok {
		return ""
	}
	return string(f.Content[start:end])
}

// LineSpan returns the byte span of a zero-based line without its newline.
func (f *File) LineSpan(line int) (Span, bool) {
	start, end, ok := f.lineBounds(line)
	if !ok {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

func (f *File) lineBounds(line int) (start, end uint32, ok bool) {
	if f == nil || line < 0 || line >= f.LineCount() {
		return 0, 0, false
	}
	n := f.size()
	if line > 0 {
		start = f.LineIdx[line-1] + 1
	}
	end = n
	if line < len(f.LineIdx) {
		end = f.LineIdx[line]
	}
	if start > n {
		return 0, 0, false
	}
	return start, end, true
}

// OffsetAt converts an LSP position into a byte offset. Positions past the
// end of a line clamp to the line end.
func (f *File) OffsetAt(pos Position) uint32 {
	if f == nil || pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line >= f.LineCount() {
		return f.size()
	}
	lineStart, lineEnd, _ := f.lineBounds(pos.Line)
	units := 0
	off := lineStart
	for off < lineEnd && units < pos.Character {
		r, size := utf8.DecodeRune(f.Content[off:lineEnd])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += ClampOffset(size)
	}
	return off
}

// PositionAt converts a byte offset into an LSP position counted in UTF-16 units.
func (f *File) PositionAt(offset uint32) Position {
	if f == nil {
		return Position{}
	}
	offset = min(offset, f.size())
	lineIdx := f.LineIdx
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	var lineStart uint32
	if line > 0 {
		lineStart = lineIdx[line-1] + 1
	}
	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRune(f.Content[off:offset])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += ClampOffset(size)
	}
	return Position{Line: line, Character: units}
}

// RangeOf converts a byte span into an LSP range.
func (f *File) RangeOf(span Span) Range {
	return Range{Start: f.PositionAt(span.Start), End: f.PositionAt(span.End)}
}

func (f *File) size() uint32 {
	if f == nil {
		return 0
	}
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// ClampOffset converts a byte count into an offset, clamping negative values
// to zero and values beyond uint32 to the maximum.
func ClampOffset(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}
