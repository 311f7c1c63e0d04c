package latex

import (
	"strings"

	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
)

type parser struct {
	file   *source.File
	lx     *lexer.Lexer
	tree   *Tree
	defs   map[string]struct{}
	refs   map[string]struct{}
	ranges map[string]struct{}
	cites  map[string]struct{}
	envs   []int         // стек индексов в tree.Environments
	braces []source.Span // незакрытые {
}

// Parse builds the structural tree of a LaTeX document. It never fails:
// malformed input yields a best-effort tree with Errors recorded.
func Parse(file *source.File, opts Options) *Tree {
	p := &parser{
		file:   file,
		lx:     lexer.New(file, lexer.Options{VerbatimEnvironments: opts.VerbatimEnvironments}),
		tree:   &Tree{},
		defs:   toSet(opts.LabelDefinitionCommands),
		refs:   toSet(opts.LabelReferenceCommands),
		ranges: toSet(opts.LabelReferenceRangeCommands),
		cites:  toSet(opts.CitationCommands),
	}
	p.run()
	return p.tree
}

func (p *parser) run() {
	for {
		tok := p.lx.Next()
		switch tok.Kind {
		case token.EOF:
			p.finish()
			return
		case token.LBrace:
			p.braces = append(p.braces, tok.Span)
		case token.RBrace:
			if len(p.braces) == 0 {
				p.errorf(ErrUnexpectedRCurly, tok.Span, "")
				continue
			}
			p.braces = p.braces[:len(p.braces)-1]
		case token.Command:
			p.command(tok)
		}
	}
}

func (p *parser) command(tok token.Token) {
	name := tok.CommandName()
	switch name {
	case "begin":
		p.begin(tok)
		return
	case "end":
		p.end(tok)
		return
	}
	if _, ok := p.defs[name]; ok {
		p.labels(tok, LabelDefinition)
		return
	}
	if _, ok := p.refs[name]; ok {
		p.skipOptional()
		p.labels(tok, LabelReference)
		return
	}
	if _, ok := p.ranges[name]; ok {
		p.skipOptional()
		p.labels(tok, LabelReference)
		p.labels(tok, LabelReference)
		return
	}
	if _, ok := p.cites[name]; ok {
		p.citations(tok)
		return
	}
	if inc, ok := includeCommands[name]; ok {
		p.include(tok, inc)
	}
}

func (p *parser) labels(tok token.Token, kind LabelKind) {
	arg, ok := p.group()
	if !ok {
		return
	}
	items := arg.items()
	if kind == LabelDefinition && len(items) > 1 {
		// \label не допускает списки: имя целиком
		items = []item{arg.whole()}
	}
	for _, it := range items {
		p.tree.Labels = append(p.tree.Labels, Label{
			Kind:        kind,
			Name:        source.NormalizeName(it.text),
			NameSpan:    it.span,
			Command:     tok.CommandName(),
			CommandSpan: source.Span{Start: tok.Span.Start, End: arg.end},
		})
	}
}

func (p *parser) citations(tok token.Token) {
	p.skipOptional()
	p.skipOptional()
	arg, ok := p.group()
	if !ok {
		return
	}
	for _, it := range arg.items() {
		p.tree.Citations = append(p.tree.Citations, Citation{
			Key:         source.NormalizeName(it.text),
			KeySpan:     it.span,
			Command:     tok.CommandName(),
			CommandSpan: source.Span{Start: tok.Span.Start, End: arg.end},
		})
	}
}

func (p *parser) include(tok token.Token, inc includeCommand) {
	p.skipOptional()
	var paths []item
	end := tok.Span.End
	switch inc.shape {
	case shapeDirFile:
		dir, ok := p.group()
		if !ok {
			return
		}
		file, ok := p.group()
		if !ok {
			return
		}
		end = file.end
		it := file.whole()
		d := strings.TrimSuffix(dir.whole().text, "/")
		if d != "" {
			it.text = d + "/" + it.text
		}
		paths = []item{it}
	default:
		arg, ok := p.group()
		if !ok {
			// \input file без скобок
			next := p.lx.Peek()
			if tok.CommandName() != "input" || next.Kind != token.Word || next.HasNewlineBefore() {
				return
			}
			p.lx.Next()
			arg = groupArg{end: next.Span.End, tokens: []token.Token{next}}
		}
		end = arg.end
		if inc.shape == shapeList {
			paths = arg.items()
		} else {
			paths = []item{arg.whole()}
		}
	}
	for _, it := range paths {
		if it.text == "" {
			continue
		}
		p.tree.Includes = append(p.tree.Includes, Include{
			Kind:        inc.kind,
			Path:        it.text,
			PathSpan:    it.span,
			Command:     tok.CommandName(),
			CommandSpan: source.Span{Start: tok.Span.Start, End: end},
		})
	}
}

func (p *parser) begin(tok token.Token) {
	arg, ok := p.group()
	if !ok {
		return
	}
	name := arg.whole()
	p.tree.Environments = append(p.tree.Environments, Environment{
		Name:     name.text,
		NameSpan: name.span,
		Begin:    source.Span{Start: tok.Span.Start, End: arg.end},
	})
	p.envs = append(p.envs, len(p.tree.Environments)-1)
	if name.text != "" && p.lx.IsVerbatim(name.text) {
		p.lx.SkipVerbatim(name.text)
	}
}

func (p *parser) end(tok token.Token) {
	arg, ok := p.group()
	if !ok {
		return
	}
	name := arg.whole()
	endSpan := source.Span{Start: tok.Span.Start, End: arg.end}
	if len(p.envs) == 0 {
		p.errorf(ErrUnexpectedEnd, endSpan, name.text)
		return
	}

	match := -1
	for i := len(p.envs) - 1; i >= 0; i-- {
		if p.tree.Environments[p.envs[i]].Name == name.text {
			match = i
			break
		}
	}
	if match < 0 {
		top := p.envs[len(p.envs)-1]
		p.errorf(ErrMismatchedEnvironment, name.span, p.tree.Environments[top].Name)
		p.close(top, endSpan)
		p.envs = p.envs[:len(p.envs)-1]
		return
	}
	for _, idx := range p.envs[match+1:] {
		env := p.tree.Environments[idx]
		p.errorf(ErrUnterminatedEnvironment, env.NameSpan, env.Name)
	}
	p.close(p.envs[match], endSpan)
	p.envs = p.envs[:match]
}

func (p *parser) close(idx int, endSpan source.Span) {
	p.tree.Environments[idx].End = endSpan
	p.tree.Environments[idx].Closed = true
}

func (p *parser) finish() {
	for _, sp := range p.braces {
		p.errorf(ErrExpectingRCurly, sp, "")
	}
	for _, idx := range p.envs {
		env := p.tree.Environments[idx]
		p.errorf(ErrUnterminatedEnvironment, env.NameSpan, env.Name)
	}
	p.braces, p.envs = nil, nil
}

func (p *parser) errorf(code ErrorCode, sp source.Span, name string) {
	p.tree.Errors = append(p.tree.Errors, Error{Code: code, Span: sp, Name: name})
}

func toSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
