package buildlog

import (
	"path"
	"sort"
	"strings"
)

// fileRange says that File was open between byte offsets Start and End.
type fileRange struct {
	Start, End int
	File       string
}

var sourceExts = map[string]struct{}{
	".tex": {}, ".sty": {}, ".cls": {}, ".bib": {}, ".bbl": {},
	".ltx": {}, ".def": {}, ".cfg": {}, ".clo": {}, ".fd": {},
	".aux": {}, ".toc": {}, ".lof": {}, ".lot": {}, ".out": {},
}

// looksLikeFile accepts tokens such as "./main.tex" or "/usr/share/x.sty".
func looksLikeFile(tok string) bool {
	if tok == "" {
		return false
	}
	_, ok := sourceExts[strings.ToLower(path.Ext(tok))]
	return ok
}

// scanFiles walks the parenthesized file stack. Every "(" either opens a
// file (when followed by a path) or a plain group; ")" closes the innermost.
func scanFiles(text string) []fileRange {
	type open struct {
		start int
		file  string
	}
	var (
		stack  []open
		ranges []fileRange
	)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			j := i + 1
			for j < len(text) && !strings.ContainsRune(" \t\n()[]{}<>\"", rune(text[j])) {
				j++
			}
			tok := strings.Trim(text[i+1:j], `"`)
			if looksLikeFile(tok) {
				stack = append(stack, open{start: i, file: tok})
			} else {
				stack = append(stack, open{start: i})
			}
		case ')':
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.file != "" {
				ranges = append(ranges, fileRange{Start: top.start, End: i, File: top.file})
			}
		}
	}
	// незакрытые файлы тянутся до конца лога
	for _, o := range stack {
		if o.file != "" {
			ranges = append(ranges, fileRange{Start: o.start, End: len(text), File: o.file})
		}
	}
	sort.Slice(ranges, func(a, b int) bool {
		return ranges[a].Start < ranges[b].Start
	})
	return ranges
}

// fileAt returns the innermost file open at offset, or "".
func fileAt(ranges []fileRange, offset int) string {
	best := ""
	bestLen := -1
	for _, r := range ranges {
		if r.Start > offset {
			break
		}
		if offset > r.End {
			continue
		}
		if n := r.End - r.Start; bestLen < 0 || n < bestLen {
			best, bestLen = r.File, n
		}
	}
	return best
}
