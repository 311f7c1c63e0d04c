package diagfmt

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"quill/internal/diag"
	"quill/internal/source"
)

type entry struct {
	uri  source.URI
	path string
	diag diag.Diagnostic
}

// ordered flattens set by display path, then position.
func ordered(set diag.Set, mode PathMode, baseDir string) []entry {
	out := make([]entry, 0, set.Len())
	for uri, ds := range set {
		path := formatPath(uri, mode, baseDir)
		for _, d := range ds {
			out = append(out, entry{uri: uri, path: path, diag: d})
		}
	}
	slices.SortStableFunc(out, func(a, b entry) int {
		if c := strings.Compare(a.path, b.path); c != 0 {
			return c
		}
		as, bs := a.diag.Range.Start, b.diag.Range.Start
		if as != bs {
			if as.Less(bs) {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.diag.Severity, b.diag.Severity); c != 0 {
			return c
		}
		return strings.Compare(a.diag.Message, b.diag.Message)
	})
	return out
}

// Summary renders per-severity counts, e.g. "2 errors, 1 warning".
// An empty set yields "".
func Summary(set diag.Set) string {
	var counts [4]int
	for _, ds := range set {
		for _, d := range ds {
			switch d.Severity {
			case diag.SevError:
				counts[0]++
			case diag.SevWarning:
				counts[1]++
			case diag.SevInfo:
				counts[2]++
			default:
				counts[3]++
			}
		}
	}
	names := [4]string{"error", "warning", "info", "hint"}
	var parts []string
	for i, n := range counts {
		if n == 0 {
			continue
		}
		name := names[i]
		if n != 1 && name != "info" {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
	}
	return strings.Join(parts, ", ")
}

func tagName(tag diag.Tag) string {
	switch tag {
	case diag.TagUnnecessary:
		return "unnecessary"
	case diag.TagDeprecated:
		return "deprecated"
	}
	return "unknown"
}
