package diagnostics

import (
	"quill/internal/diag"
	"quill/internal/syntax"
	"quill/internal/syntax/bibtex"
	"quill/internal/workspace"
)

func checkBibtexGrammar(doc *workspace.Document, rep diag.Reporter) {
	switch doc.Tree.Kind {
	case syntax.KindBibliography:
	case syntax.KindMarkup:
		return
	}
	tree := doc.Tree.Bibliography
	if tree == nil {
		return
	}
	for _, e := range tree.Errors {
		code, msg := bibtexErrorMessage(e.Code)
		diag.ReportError(rep, doc.URI, code, doc.Range(e.Span), msg).Emit()
	}
}

func bibtexErrorMessage(code bibtex.ErrorCode) (diag.Code, string) {
	switch code {
	case bibtex.ErrExpectingLCurly:
		return diag.BibExpectingLCurly, `Expecting a curly bracket: "{"`
	case bibtex.ErrExpectingKey:
		return diag.BibExpectingKey, "Expecting a key"
	case bibtex.ErrExpectingRCurly:
		return diag.BibExpectingRCurly, `Expecting a curly bracket: "}"`
	case bibtex.ErrExpectingEq:
		return diag.BibExpectingEq, `Expecting an equality sign: "="`
	case bibtex.ErrExpectingFieldValue:
		return diag.BibExpectingFieldValue, "Expecting a field value"
	}
	return diag.BibInfo, "Syntax error"
}
