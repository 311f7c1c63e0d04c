package source

import (
	"bytes"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalizeCRLF turns \r\n into \n; a lone \r is kept, TeX treats it as a
// line end on its own and offsets must stay stable.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, []byte("\r\n")) {
		return content, false
	}
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")), true
}

func removeBOM(content []byte) ([]byte, bool) {
	if rest, ok := bytes.CutPrefix(content, utf8BOM); ok {
		return rest, true
	}
	return content, false
}

// buildLineIndex records the offset of every '\n'.
func buildLineIndex(content []byte) []uint32 {
	idx := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		off += i
		idx = append(idx, ClampOffset(off))
		off++
	}
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath returns target relative to base, or the absolute target when
// it escapes base.
func RelativePath(target, base string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absTarget), nil
	}
	return normalizePath(rel), nil
}

// NormalizeName brings a label or citation key into NFC form and trims
// surrounding whitespace, so visually identical keys compare equal.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}
