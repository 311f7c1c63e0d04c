package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"quill/internal/config"
	"quill/internal/source"
	"quill/internal/syntax"
)

// ErrNotFound is returned by Load when the file does not exist.
var ErrNotFound = errors.New("workspace: file not found")

// ErrUnknownLanguage is returned by Load for files that are neither LaTeX nor BibTeX.
var ErrUnknownLanguage = errors.New("workspace: unknown language")

// Resolver maps a bare file name (e.g. "amsmath.sty") to a path inside the
// TeX distribution.
type Resolver interface {
	Resolve(name string) (string, bool)
}

// Workspace is the set of known documents keyed by URI. It is not safe for
// concurrent use; the owner serializes access.
type Workspace struct {
	docs   map[source.URI]*Document
	cfg    *config.Config
	root   source.URI
	distro Resolver
}

// New creates an empty workspace. A nil cfg means defaults.
func New(cfg *config.Config) *Workspace {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Workspace{
		docs: make(map[source.URI]*Document),
		cfg:  cfg,
	}
}

// Config returns the active configuration. Callers must not modify it.
func (w *Workspace) Config() *config.Config {
	return w.cfg
}

// SetConfig swaps the configuration and reparses every document, since the
// syntax options may have changed.
func (w *Workspace) SetConfig(cfg *config.Config) {
	if cfg == nil {
		cfg = config.Default()
	}
	w.cfg = cfg
	for uri, doc := range w.docs {
		w.docs[uri] = newDocumentFromFile(doc.URI, doc.File, doc.Language, doc.Owner, doc.Version, cfg)
	}
}

// SetRoot records the workspace root directory.
func (w *Workspace) SetRoot(root source.URI) {
	w.root = root
}

func (w *Workspace) Root() source.URI {
	return w.root
}

// SetDistro installs the resolver used by Discover for distribution files.
func (w *Workspace) SetDistro(r Resolver) {
	w.distro = r
}

// Len returns the number of documents.
func (w *Workspace) Len() int {
	return len(w.docs)
}

// Lookup finds a document by URI.
func (w *Workspace) Lookup(uri source.URI) (*Document, bool) {
	doc, ok := w.docs[uri]
	return doc, ok
}

// File returns the text of uri, or nil when the document is unknown.
func (w *Workspace) File(uri source.URI) *source.File {
	if doc, ok := w.docs[uri]; ok {
		return doc.File
	}
	return nil
}

// Iter returns every document sorted by URI.
func (w *Workspace) Iter() []*Document {
	out := make([]*Document, 0, len(w.docs))
	for _, doc := range w.docs {
		out = append(out, doc)
	}
	slices.SortFunc(out, func(a, b *Document) int {
		return strings.Compare(string(a.URI), string(b.URI))
	})
	return out
}

// Open parses text and stores it, replacing any document at the same URI.
func (w *Workspace) Open(uri source.URI, text string, lang syntax.Language, owner Owner, version int) *Document {
	doc := NewDocument(uri, text, lang, owner, version, w.cfg)
	w.docs[uri] = doc
	return doc
}

// Replace stores a prebuilt document.
func (w *Workspace) Replace(doc *Document) {
	if doc == nil {
		return
	}
	w.docs[doc.URI] = doc
}

// Close hands a client document back to the server. If the file still
// exists on disk it is reloaded from there as a server document, otherwise
// it is removed. It returns false when nothing was open at uri.
func (w *Workspace) Close(uri source.URI) bool {
	doc, ok := w.docs[uri]
	if !ok {
		return false
	}
	if doc.Owner != OwnerClient {
		return true
	}
	p := uri.Path()
	if p == "" {
		delete(w.docs, uri)
		return true
	}
	file, err := source.LoadFile(p)
	if err != nil {
		delete(w.docs, uri)
		return true
	}
	w.docs[uri] = newDocumentFromFile(uri, file, doc.Language, OwnerServer, 0, w.cfg)
	return true
}

// Remove drops a document regardless of owner.
func (w *Workspace) Remove(uri source.URI) {
	delete(w.docs, uri)
}

// Load reads a file from disk into the workspace. A document the client
// currently owns is left untouched, since the editor buffer wins over disk.
func (w *Workspace) Load(path string, owner Owner) (*Document, error) {
	uri := source.URIFromPath(path)
	if cur, ok := w.docs[uri]; ok && cur.Owner == OwnerClient {
		return cur, nil
	}
	lang, ok := syntax.LanguageFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, path)
	}
	file, err := source.LoadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	doc := newDocumentFromFile(uri, file, lang, owner, 0, w.cfg)
	w.docs[uri] = doc
	return doc, nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
