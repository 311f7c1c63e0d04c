package bibtex

import (
	"strings"

	"quill/internal/lexer"
	"quill/internal/source"
)

var months = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

type parser struct {
	file    *source.File
	c       lexer.Cursor
	tree    *Tree
	strings map[string]string
	closer  byte
}

// Parse reads a BibTeX database. Text outside @-items is ignored, as BibTeX
// itself does. Parse never fails; problems are recorded in Tree.Errors.
func Parse(file *source.File) *Tree {
	p := &parser{
		file:    file,
		c:       lexer.NewCursor(file),
		tree:    &Tree{},
		strings: make(map[string]string),
	}
	for p.c.SkipTo([]byte("@")) {
		p.item()
	}
	return p.tree
}

func (p *parser) item() {
	start := p.c.Mark()
	p.c.Bump() // '@'
	p.skipSpace()
	typeMark := p.c.Mark()
	typ := strings.ToLower(p.ident())
	typeSpan := p.c.SpanFrom(typeMark)
	if typ == "" {
		return
	}

	switch typ {
	case "comment":
		p.skipSpace()
		if b := p.c.Peek(); b == '{' || b == '(' {
			p.skipBalanced()
		} else {
			p.c.SkipLine()
		}
		return
	case "preamble":
		if !p.open(typeSpan) {
			return
		}
		p.skipSpace()
		p.value()
		p.close()
		return
	case "string":
		p.stringDef(start, typeSpan)
		return
	}
	p.entry(start, typ, typeSpan)
}

func (p *parser) stringDef(start lexer.Mark, typeSpan source.Span) {
	if !p.open(typeSpan) {
		return
	}
	p.skipSpace()
	nameMark := p.c.Mark()
	name := p.ident()
	def := StringDef{Name: name, NameSpan: p.c.SpanFrom(nameMark)}
	p.skipSpace()
	if !p.c.Eat('=') {
		p.errAt(ErrExpectingEq, p.c.Off)
		p.recover()
		return
	}
	p.skipSpace()
	val, _, ok := p.value()
	if !ok {
		p.errAt(ErrExpectingFieldValue, p.c.Off)
	}
	def.Value = val
	p.close()
	def.Span = p.c.SpanFrom(start)
	if name != "" {
		p.strings[strings.ToLower(name)] = val
		p.tree.Strings = append(p.tree.Strings, def)
	}
}

func (p *parser) entry(start lexer.Mark, typ string, typeSpan source.Span) {
	entry := Entry{Type: typ, TypeSpan: typeSpan}
	defer func() {
		entry.Span = p.c.SpanFrom(start)
		if entry.Key != "" {
			p.tree.Entries = append(p.tree.Entries, entry)
		}
	}()

	if !p.open(typeSpan) {
		return
	}
	p.skipSpace()
	keyMark := p.c.Mark()
	for !p.c.EOF() && isKeyByte(p.c.Peek()) {
		p.c.Bump()
	}
	entry.KeySpan = p.c.SpanFrom(keyMark)
	entry.Key = source.NormalizeName(p.file.Slice(entry.KeySpan))
	if entry.Key == "" {
		p.errAt(ErrExpectingKey, p.c.Off)
	}

	p.skipSpace()
	if !p.c.Eat(',') {
		p.close()
		return
	}
	for {
		p.skipSpace()
		switch b := p.c.Peek(); {
		case p.c.EOF() || b == '@':
			p.errAt(ErrExpectingRCurly, p.c.Off)
			return
		case b == p.closer:
			p.c.Bump()
			return
		}
		field, ok := p.field()
		if ok {
			entry.Fields = append(entry.Fields, field)
		}
		p.skipSpace()
		p.c.Eat(',')
	}
}

func (p *parser) field() (Field, bool) {
	nameMark := p.c.Mark()
	name := p.ident()
	if name == "" {
		// мусор внутри записи: пропускаем до следующего поля
		p.errAt(ErrExpectingRCurly, p.c.Off)
		p.recover()
		return Field{}, false
	}
	f := Field{Name: strings.ToLower(name), NameSpan: p.c.SpanFrom(nameMark)}
	p.skipSpace()
	if !p.c.Eat('=') {
		p.errAt(ErrExpectingEq, p.c.Off)
		p.recover()
		return f, true
	}
	p.skipSpace()
	val, span, ok := p.value()
	if !ok {
		p.errAt(ErrExpectingFieldValue, p.c.Off)
		p.recover()
		return f, true
	}
	f.Value, f.ValueSpan = val, span
	return f, true
}

// value parses `part # part # ...`.
func (p *parser) value() (string, source.Span, bool) {
	var b strings.Builder
	start := p.c.Off
	ok := false
	for {
		part, partOK := p.valuePart()
		if !partOK {
			break
		}
		ok = true
		b.WriteString(part)
		end := p.c.Mark()
		p.skipSpace()
		if !p.c.Eat('#') {
			p.c.Reset(end)
			break
		}
		p.skipSpace()
	}
	return collapseSpace(b.String()), source.Span{Start: start, End: p.c.Off}, ok
}

func (p *parser) valuePart() (string, bool) {
	switch b := p.c.Peek(); {
	case p.c.EOF():
		return "", false
	case b == '{':
		sp := p.skipBalanced()
		return stripBraces(p.file.Slice(sp)), true
	case b == '"':
		return p.quoted(), true
	case b >= '0' && b <= '9':
		m := p.c.Mark()
		for d := p.c.Peek(); d >= '0' && d <= '9'; d = p.c.Peek() {
			p.c.Bump()
		}
		return p.file.Slice(p.c.SpanFrom(m)), true
	}
	m := p.c.Mark()
	name := p.ident()
	if name == "" {
		return "", false
	}
	sp := p.c.SpanFrom(m)
	p.tree.StringRefs = append(p.tree.StringRefs, StringRef{Name: name, Span: sp})
	lower := strings.ToLower(name)
	if val, ok := p.strings[lower]; ok {
		return val, true
	}
	if val, ok := months[lower]; ok {
		return val, true
	}
	return name, true
}

func (p *parser) quoted() string {
	p.c.Bump() // '"'
	m := p.c.Mark()
	depth := 0
	for !p.c.EOF() {
		b := p.c.Peek()
		switch {
		case b == '{':
			depth++
		case b == '}' && depth > 0:
			depth--
		case b == '"' && depth == 0:
			text := p.file.Slice(p.c.SpanFrom(m))
			p.c.Bump()
			return stripBraces(text)
		}
		p.c.Bump()
	}
	p.errAt(ErrExpectingFieldValue, p.c.Off)
	return stripBraces(p.file.Slice(p.c.SpanFrom(m)))
}

// skipBalanced consumes a {...} or (...) group and returns its inner span.
func (p *parser) skipBalanced() source.Span {
	open := p.c.Bump()
	closeCh := byte('}')
	if open == '(' {
		closeCh = ')'
	}
	m := p.c.Mark()
	depth := 0
	for !p.c.EOF() {
		b := p.c.Peek()
		switch {
		case b == open:
			depth++
		case b == closeCh && depth == 0:
			sp := p.c.SpanFrom(m)
			p.c.Bump()
			return sp
		case b == closeCh:
			depth--
		}
		p.c.Bump()
	}
	p.errAt(ErrExpectingRCurly, p.c.Off)
	return p.c.SpanFrom(m)
}

func (p *parser) open(typeSpan source.Span) bool {
	p.skipSpace()
	switch p.c.Peek() {
	case '{':
		p.closer = '}'
	case '(':
		p.closer = ')'
	default:
		p.tree.Errors = append(p.tree.Errors, Error{Code: ErrExpectingLCurly, Span: typeSpan})
		return false
	}
	p.c.Bump()
	return true
}

func (p *parser) close() {
	p.skipSpace()
	if !p.c.Eat(p.closer) {
		p.errAt(ErrExpectingRCurly, p.c.Off)
	}
}

// recover skips to the next ',' or closing delimiter at depth zero, or to the
// next '@', without consuming it.
func (p *parser) recover() {
	depth := 0
	for !p.c.EOF() {
		switch b := p.c.Peek(); {
		case b == '@' && depth == 0:
			return
		case b == '{':
			depth++
		case b == '}' && depth > 0:
			depth--
		case (b == ',' || b == p.closer) && depth == 0:
			return
		}
		p.c.Bump()
	}
}

func (p *parser) ident() string {
	m := p.c.Mark()
	for !p.c.EOF() && isIdentByte(p.c.Peek()) {
		p.c.Bump()
	}
	return p.file.Slice(p.c.SpanFrom(m))
}

func (p *parser) skipSpace() {
	for !p.c.EOF() {
		switch p.c.Peek() {
		case ' ', '\t', '\n', '\r':
			p.c.Bump()
		default:
			return
		}
	}
}

func (p *parser) errAt(code ErrorCode, off uint32) {
	p.tree.Errors = append(p.tree.Errors, Error{Code: code, Span: source.Span{Start: off, End: off}})
}

func isIdentByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b >= 0x80:
		return true
	}
	return strings.IndexByte("_-:.+/'!?*&^", b) >= 0
}

func isKeyByte(b byte) bool {
	switch b {
	case ',', '{', '}', '(', ')', '=', '"', '#', '%', '@', ' ', '\t', '\n', '\r':
		return false
	}
	return true
}

func stripBraces(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '{' || r == '}' {
			return -1
		}
		return r
	}, s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
