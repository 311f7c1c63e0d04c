package lexer

import (
	"quill/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
// - ' ', '\t' и '\r' коалесцируются в один TriviaSpace
// - последовательные '\n' коалесцируются в один TriviaNewline
// - %... до \n -> TriviaComment
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = nil
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		switch b := lx.cursor.Peek(); {
		case isSpace(b):
			for isSpace(lx.cursor.Peek()) && !lx.cursor.EOF() {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
		case b == '%':
			lx.cursor.SkipLine()
			lx.pushTrivia(token.TriviaComment, start)
		default:
			// нет больше trivia
			return
		}
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}
