package lexer

import (
	"unicode/utf8"

	"quill/internal/source"
	"quill/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // 1 элементный буфер для токена
	hold   []token.Trivia // накопленные leading trivia
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		return token.Token{
			Kind:    token.EOF,
			Span:    lx.emptySpan(),
			Leading: lx.takeHold(),
		}
	}

	start := lx.cursor.Mark()
	var kind token.Kind
	switch ch := lx.cursor.Peek(); ch {
	case '\\':
		kind = lx.scanCommand()
	case '{':
		lx.cursor.Bump()
		kind = token.LBrace
	case '}':
		lx.cursor.Bump()
		kind = token.RBrace
	case '[':
		lx.cursor.Bump()
		kind = token.LBracket
	case ']':
		lx.cursor.Bump()
		kind = token.RBracket
	case ',':
		lx.cursor.Bump()
		kind = token.Comma
	case '=':
		lx.cursor.Bump()
		kind = token.Eq
	case '$':
		lx.cursor.Bump()
		lx.cursor.Eat('$')
		kind = token.Dollar
	default:
		lx.scanWord()
		kind = token.Word
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{
		Kind:    kind,
		Span:    sp,
		Text:    string(lx.file.Content[sp.Start:sp.End]),
		Leading: lx.takeHold(),
	}
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// Offset returns the position right after the last consumed token.
func (lx *Lexer) Offset() uint32 {
	if lx.look != nil {
		if len(lx.look.Leading) > 0 {
			return lx.look.Leading[0].Span.Start
		}
		return lx.look.Span.Start
	}
	return lx.cursor.Off
}

// IsVerbatim reports whether env is configured as a raw environment.
func (lx *Lexer) IsVerbatim(env string) bool {
	for _, name := range lx.opts.VerbatimEnvironments {
		if name == env {
			return true
		}
	}
	return false
}

// SkipVerbatim discards raw text up to the matching \end{env}. The cursor is
// left on the backslash of \end so that the caller sees it as the next token.
// Reports false when the environment is never closed.
func (lx *Lexer) SkipVerbatim(env string) bool {
	lx.cursor.Reset(Mark(lx.Offset()))
	lx.look = nil
	return lx.cursor.SkipTo([]byte(`\end{` + env + `}`))
}

func (lx *Lexer) scanCommand() token.Kind {
	lx.cursor.Bump() // '\'
	if lx.cursor.EOF() {
		return token.Command
	}
	if !token.IsCommandLetter(lx.cursor.Peek()) {
		lx.bumpRune()
		return token.Command
	}
	nameStart := lx.cursor.Off
	for token.IsCommandLetter(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
	name := string(lx.file.Content[nameStart:lx.cursor.Off])
	lx.cursor.Eat('*')
	if name == "verb" {
		lx.scanInlineVerbatim()
	}
	return token.Command
}

// \verb|...|: разделитель любой, тело до того же символа или конца строки.
func (lx *Lexer) scanInlineVerbatim() {
	if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
		return
	}
	delim := lx.cursor.Bump()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' {
			return
		}
		lx.cursor.Bump()
		if b == delim {
			return
		}
	}
}

func (lx *Lexer) scanWord() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if isSpace(b) || b == '\n' || isSpecial(b) {
			return
		}
		lx.bumpRune()
	}
}

func (lx *Lexer) bumpRune() {
	if lx.cursor.Peek() < utf8.RuneSelf {
		lx.cursor.Bump()
		return
	}
	_, sz := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
	for range sz {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) takeHold() []token.Trivia {
	h := lx.hold
	lx.hold = nil
	return h
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{Start: lx.cursor.Off, End: lx.cursor.Off}
}

func isSpecial(b byte) bool {
	switch b {
	case '\\', '{', '}', '[', ']', ',', '=', '$', '%':
		return true
	}
	return false
}
