package token

import (
	"unicode/utf8"

	"quill/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// CommandName returns the command name without the backslash and a trailing star.
func (t Token) CommandName() string {
	if t.Kind != Command || len(t.Text) < 2 {
		return ""
	}
	body := t.Text[1:]
	n := letterRun(body)
	if n == 0 {
		_, size := utf8.DecodeRuneInString(body)
		return body[:size]
	}
	return body[:n]
}

// Starred reports whether a command carries the * variant marker.
func (t Token) Starred() bool {
	if t.Kind != Command || len(t.Text) < 2 {
		return false
	}
	body := t.Text[1:]
	n := letterRun(body)
	return n > 0 && n < len(body) && body[n] == '*'
}

// IsCommandLetter reports whether b may appear in a multi-letter command name.
func IsCommandLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '@'
}

func letterRun(s string) int {
	n := 0
	for n < len(s) && IsCommandLetter(s[n]) {
		n++
	}
	return n
}

// IsDelimiter reports whether the token is a grouping delimiter.
func (t Token) IsDelimiter() bool {
	switch t.Kind {
	case LBrace, RBrace, LBracket, RBracket:
		return true
	default:
		return false
	}
}

// HasNewlineBefore reports whether the leading trivia contain a line break.
func (t Token) HasNewlineBefore() bool {
	for _, tr := range t.Leading {
		if tr.Kind == TriviaNewline {
			return true
		}
	}
	return false
}
