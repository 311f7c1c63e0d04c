package diagnostics

import (
	"fmt"

	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/syntax"
	"quill/internal/syntax/latex"
	"quill/internal/workspace"
)

// checkLatexGrammar reports the structural errors the LaTeX parser recorded.
// Errors inside configured verbatim environments are not reported: their
// content is not TeX.
func checkLatexGrammar(doc *workspace.Document, cfg *config.Config, rep diag.Reporter) {
	switch doc.Tree.Kind {
	case syntax.KindMarkup:
	case syntax.KindBibliography:
		return
	}
	tree := doc.Tree.Markup
	if tree == nil {
		return
	}
	var verbatim []source.Span
	for _, env := range tree.Environments {
		if env.Closed && cfg.Syntax.IsVerbatim(env.Name) {
			verbatim = append(verbatim, env.Span())
		}
	}

	for _, e := range tree.Errors {
		if insideAny(e.Span, verbatim) {
			continue
		}
		code, msg := latexErrorMessage(e)
		diag.ReportError(rep, doc.URI, code, doc.Range(e.Span), msg).Emit()
	}
}

func latexErrorMessage(e latex.Error) (diag.Code, string) {
	switch e.Code {
	case latex.ErrUnexpectedRCurly:
		return diag.GrmUnexpectedRCurly, `Unexpected "}"`
	case latex.ErrExpectingRCurly:
		return diag.GrmExpectingRCurly, `Expecting a curly bracket: "}"`
	case latex.ErrMismatchedEnvironment:
		return diag.GrmMismatchedEnvironment, fmt.Sprintf("Mismatched environment %q", e.Name)
	case latex.ErrUnterminatedEnvironment:
		return diag.GrmUnterminatedEnvironment, fmt.Sprintf("Unterminated environment %q", e.Name)
	case latex.ErrUnexpectedEnd:
		return diag.GrmUnexpectedEnd, fmt.Sprintf(`Unexpected "\end{%s}"`, e.Name)
	}
	return diag.GrmInfo, "Syntax error"
}

// insideAny: span lies strictly within one of the outer spans.
func insideAny(sp source.Span, outer []source.Span) bool {
	for _, o := range outer {
		if sp.Start > o.Start && sp.End < o.End {
			return true
		}
	}
	return false
}
