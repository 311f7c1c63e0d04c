package bibtex

import (
	"strings"

	"quill/internal/source"
)

// Field is a name = value pair inside an entry. Name is lowercase; Value is
// the concatenated text with braces and quotes removed and @string
// references expanded.
type Field struct {
	Name      string
	NameSpan  source.Span
	Value     string
	ValueSpan source.Span
}

type Entry struct {
	Type     string // lowercase, without @
	TypeSpan source.Span
	Key      string
	KeySpan  source.Span
	Span     source.Span
	Fields   []Field
}

// Field looks up a field by case-insensitive name.
func (e *Entry) Field(name string) (Field, bool) {
	name = strings.ToLower(name)
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// StringDef is an @string abbreviation.
type StringDef struct {
	Name     string
	NameSpan source.Span
	Value    string
	Span     source.Span
}

// StringRef is a bare identifier used as a field value.
type StringRef struct {
	Name string
	Span source.Span
}

type ErrorCode uint8

const (
	ErrExpectingLCurly ErrorCode = iota + 1
	ErrExpectingKey
	ErrExpectingRCurly
	ErrExpectingEq
	ErrExpectingFieldValue
)

type Error struct {
	Code ErrorCode
	Span source.Span
}

type Tree struct {
	Entries    []Entry
	Strings    []StringDef
	StringRefs []StringRef
	Errors     []Error
}

// EntryAt returns the entry whose span contains off.
func (t *Tree) EntryAt(off uint32) (*Entry, bool) {
	for i := range t.Entries {
		if t.Entries[i].Span.Contains(off) {
			return &t.Entries[i], true
		}
	}
	return nil, false
}

// FieldNameAt returns the field whose name span contains off.
func (t *Tree) FieldNameAt(off uint32) (Field, bool) {
	entry, ok := t.EntryAt(off)
	if !ok {
		return Field{}, false
	}
	for _, f := range entry.Fields {
		if f.NameSpan.Contains(off) {
			return f, true
		}
	}
	return Field{}, false
}

// Lookup finds an entry by key.
func (t *Tree) Lookup(key string) (*Entry, bool) {
	for i := range t.Entries {
		if t.Entries[i].Key == key {
			return &t.Entries[i], true
		}
	}
	return nil, false
}
