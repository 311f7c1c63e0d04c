package diag

import (
	"slices"
	"sort"
	"strings"

	"quill/internal/source"
)

// Set groups diagnostics by document URI. Order inside one URI is insertion order.
type Set map[source.URI][]Diagnostic

// Add appends d under uri.
func (s Set) Add(uri source.URI, d Diagnostic) {
	s[uri] = append(s[uri], d)
}

// AddAll appends a batch under uri. An empty batch still creates no key.
func (s Set) AddAll(uri source.URI, ds []Diagnostic) {
	if len(ds) == 0 {
		return
	}
	s[uri] = append(s[uri], ds...)
}

// Merge appends every entry of other.
func (s Set) Merge(other Set) {
	for uri, ds := range other {
		s.AddAll(uri, ds)
	}
}

// Get returns the diagnostics for uri. Callers must not modify the result.
func (s Set) Get(uri source.URI) []Diagnostic {
	return s[uri]
}

// длина
func (s Set) Len() int {
	n := 0
	for _, ds := range s {
		n += len(ds)
	}
	return n
}

// URIs returns the keys in sorted order.
func (s Set) URIs() []source.URI {
	out := make([]source.URI, 0, len(s))
	for uri := range s {
		out = append(out, uri)
	}
	slices.Sort(out)
	return out
}

// Retain drops every key for which keep returns false.
func (s Set) Retain(keep func(source.URI) bool) {
	for uri := range s {
		if !keep(uri) {
			delete(s, uri)
		}
	}
}

// Filter drops individual diagnostics for which keep returns false.
// Keys left without diagnostics stay present with an empty list.
func (s Set) Filter(keep func(Diagnostic) bool) {
	for uri, ds := range s {
		out := ds[:0:0]
		for _, d := range ds {
			if keep(d) {
				out = append(out, d)
			}
		}
		s[uri] = out
	}
}

// Clone returns a deep copy of the outer map and inner slices.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for uri, ds := range s {
		out[uri] = slices.Clone(ds)
	}
	return out
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (s Set) HasErrors() bool {
	for _, ds := range s {
		for i := range ds {
			if ds[i].Severity >= SevError {
				return true
			}
		}
	}
	return false
}

// SortByPosition сортирует диагностики по: start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func SortByPosition(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		di, dj := ds[i], ds[j]
		if di.Range.Start != dj.Range.Start {
			return di.Range.Start.Less(dj.Range.Start)
		}
		if di.Range.End != dj.Range.End {
			return di.Range.End.Less(dj.Range.End)
		}
		// затем по severity (по убыванию: Error > Warning > Info > Hint)
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return strings.Compare(di.Message, dj.Message) < 0
	})
}
