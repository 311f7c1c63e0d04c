package workspace

import (
	"quill/internal/config"
	"quill/internal/source"
	"quill/internal/syntax"
)

// Owner tells who is responsible for a document's content.
type Owner uint8

const (
	// OwnerClient documents are open in the editor; the client is authoritative.
	OwnerClient Owner = iota
	// OwnerServer documents were read from disk by the server.
	OwnerServer
	// OwnerDistro documents belong to the installed TeX distribution.
	OwnerDistro
)

func (o Owner) String() string {
	switch o {
	case OwnerClient:
		return "client"
	case OwnerServer:
		return "server"
	case OwnerDistro:
		return "distro"
	}
	return "unknown"
}

// Document is immutable once constructed. Edits build a new Document that
// replaces the old one at the same URI.
type Document struct {
	URI      source.URI
	Owner    Owner
	Language syntax.Language
	Version  int
	File     *source.File
	Tree     syntax.Tree
}

// NewDocument parses text with the syntax options from cfg.
func NewDocument(uri source.URI, text string, lang syntax.Language, owner Owner, version int, cfg *config.Config) *Document {
	if cfg == nil {
		cfg = config.Default()
	}
	name := uri.Path()
	if name == "" {
		name = string(uri)
	}
	file := source.NewFile(name, []byte(text))
	return newDocumentFromFile(uri, file, lang, owner, version, cfg)
}

func newDocumentFromFile(uri source.URI, file *source.File, lang syntax.Language, owner Owner, version int, cfg *config.Config) *Document {
	return &Document{
		URI:      uri,
		Owner:    owner,
		Language: lang,
		Version:  version,
		File:     file,
		Tree:     syntax.Parse(lang, file, cfg.Syntax.LatexOptions()),
	}
}

// Text returns the normalized document text.
func (d *Document) Text() string {
	return d.File.Text()
}

// WithOwner returns a copy of d with a different owner. The tree is shared.
func (d *Document) WithOwner(owner Owner) *Document {
	out := *d
	out.Owner = owner
	return &out
}

// IsMarkup reports whether the document holds a LaTeX tree.
func (d *Document) IsMarkup() bool {
	return d.Tree.Kind == syntax.KindMarkup && d.Tree.Markup != nil
}

// IsBibliography reports whether the document holds a BibTeX tree.
func (d *Document) IsBibliography() bool {
	return d.Tree.Kind == syntax.KindBibliography && d.Tree.Bibliography != nil
}

// Range converts a span of this document into an LSP range.
func (d *Document) Range(sp source.Span) source.Range {
	return d.File.RangeOf(sp)
}
