package latex

import (
	"strings"

	"quill/internal/source"
	"quill/internal/token"
)

// groupArg is a consumed {...} argument.
type groupArg struct {
	open   source.Span
	end    uint32 // offset after the closing brace, or where it was expected
	tokens []token.Token
}

type item struct {
	text string
	span source.Span
}

// group consumes a brace group if it is the next token. A group that hits a
// paragraph break or EOF before its closing brace records ErrExpectingRCurly
// and ends there.
func (p *parser) group() (groupArg, bool) {
	if p.lx.Peek().Kind != token.LBrace {
		return groupArg{}, false
	}
	open := p.lx.Next()
	arg := groupArg{open: open.Span, end: open.Span.End}
	depth := 0
	for {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == token.EOF || isParagraphBreak(tok):
			p.errorf(ErrExpectingRCurly, open.Span, "")
			return arg, true
		case tok.Kind == token.LBrace:
			depth++
		case tok.Kind == token.RBrace:
			if depth == 0 {
				p.lx.Next()
				arg.end = tok.Span.End
				return arg, true
			}
			depth--
		}
		p.lx.Next()
		arg.tokens = append(arg.tokens, tok)
		arg.end = tok.Span.End
	}
}

// skipOptional consumes a [...] argument if present.
func (p *parser) skipOptional() bool {
	if p.lx.Peek().Kind != token.LBracket {
		return false
	}
	p.lx.Next()
	depth := 0
	for {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == token.EOF || isParagraphBreak(tok):
			return true
		case tok.Kind == token.LBracket || tok.Kind == token.LBrace:
			depth++
		case tok.Kind == token.RBrace:
			if depth > 0 {
				depth--
			}
		case tok.Kind == token.RBracket:
			if depth == 0 {
				p.lx.Next()
				return true
			}
			depth--
		}
		p.lx.Next()
	}
}

// items splits the group on top-level commas.
func (g groupArg) items() []item {
	var out []item
	var cur []token.Token
	flush := func() {
		if len(cur) > 0 {
			out = append(out, joinTokens(cur))
		}
		cur = nil
	}
	for _, tok := range g.tokens {
		if tok.Kind == token.Comma {
			flush()
			continue
		}
		cur = append(cur, tok)
	}
	flush()
	return out
}

// whole returns the entire group content as one item. An empty group yields
// an empty item positioned right after the opening brace.
func (g groupArg) whole() item {
	if len(g.tokens) == 0 {
		return item{span: source.Span{Start: g.open.End, End: g.open.End}}
	}
	return joinTokens(g.tokens)
}

func joinTokens(toks []token.Token) item {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 && len(tok.Leading) > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
	}
	return item{
		text: b.String(),
		span: source.Span{Start: toks[0].Span.Start, End: toks[len(toks)-1].Span.End},
	}
}

// isParagraphBreak reports a blank line before tok. A comment eats its own
// line ending, so newlines are counted from the last comment on.
func isParagraphBreak(tok token.Token) bool {
	n := 0
	for _, tr := range tok.Leading {
		switch tr.Kind {
		case token.TriviaNewline:
			n += strings.Count(tr.Text, "\n")
		case token.TriviaComment:
			n = 0
		}
	}
	return n > 1
}
