package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"quill/internal/config"
	"quill/internal/source"
	"quill/internal/syntax"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func uris(docs []*Document) []source.URI {
	out := make([]source.URI, len(docs))
	for i, d := range docs {
		out[i] = d.URI
	}
	return out
}

func TestOpenReplacesDocument(t *testing.T) {
	ws := New(nil)
	uri := source.URIFromPath("/tmp/q/main.tex")
	ws.Open(uri, `\label{a}`, syntax.LanguageLatex, OwnerClient, 1)
	ws.Open(uri, `\label{b}`, syntax.LanguageLatex, OwnerClient, 2)
	if ws.Len() != 1 {
		t.Fatalf("expected 1 document, got %d", ws.Len())
	}
	doc, ok := ws.Lookup(uri)
	if !ok {
		t.Fatalf("document missing")
	}
	if doc.Version != 2 || doc.Tree.Markup.Labels[0].Name != "b" {
		t.Fatalf("unexpected document after replace: version=%d labels=%+v", doc.Version, doc.Tree.Markup.Labels)
	}
}

func TestIterSorted(t *testing.T) {
	ws := New(nil)
	for _, name := range []string{"c.tex", "a.tex", "b.bib"} {
		ws.Open(source.URIFromPath("/tmp/q/"+name), "", syntax.LanguageLatex, OwnerServer, 0)
	}
	got := uris(ws.Iter())
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("iter not sorted: %v", got)
		}
	}
}

func TestCloseDemotesOrRemoves(t *testing.T) {
	dir := t.TempDir()
	onDisk := writeFile(t, dir, "disk.tex", `\label{disk}`)
	ws := New(nil)

	diskURI := source.URIFromPath(onDisk)
	ws.Open(diskURI, `\label{buffer}`, syntax.LanguageLatex, OwnerClient, 3)
	goneURI := source.URIFromPath(filepath.Join(dir, "unsaved.tex"))
	ws.Open(goneURI, "", syntax.LanguageLatex, OwnerClient, 1)

	if !ws.Close(diskURI) {
		t.Fatalf("close returned false for open document")
	}
	doc, ok := ws.Lookup(diskURI)
	if !ok {
		t.Fatalf("document on disk should stay after close")
	}
	if doc.Owner != OwnerServer {
		t.Fatalf("expected server owner, got %s", doc.Owner)
	}
	if doc.Tree.Markup.Labels[0].Name != "disk" {
		t.Fatalf("expected content reloaded from disk, got %q", doc.Text())
	}

	ws.Close(goneURI)
	if _, ok := ws.Lookup(goneURI); ok {
		t.Fatalf("document without file should be removed on close")
	}
	if ws.Close(goneURI) {
		t.Fatalf("closing an unknown document should report false")
	}
}

func TestLoadKeepsClientDocument(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "main.tex", `\label{disk}`)
	ws := New(nil)
	uri := source.URIFromPath(p)
	ws.Open(uri, `\label{buffer}`, syntax.LanguageLatex, OwnerClient, 1)

	doc, err := ws.Load(p, OwnerServer)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Owner != OwnerClient || doc.Tree.Markup.Labels[0].Name != "buffer" {
		t.Fatalf("client buffer was overwritten: owner=%s text=%q", doc.Owner, doc.Text())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	ws := New(nil)
	if _, err := ws.Load(filepath.Join(dir, "missing.tex"), OwnerServer); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	p := writeFile(t, dir, "notes.txt", "x")
	if _, err := ws.Load(p, OwnerServer); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}
}

func TestSetConfigReparses(t *testing.T) {
	ws := New(nil)
	uri := source.URIFromPath("/tmp/q/main.tex")
	ws.Open(uri, `\mylabel{x}`, syntax.LanguageLatex, OwnerClient, 1)
	if doc, _ := ws.Lookup(uri); len(doc.Tree.Markup.Labels) != 0 {
		t.Fatalf("unexpected labels before config: %+v", doc.Tree.Markup.Labels)
	}
	cfg := config.Default()
	cfg.Syntax.LabelDefinitionCommands = []string{"mylabel"}
	ws.SetConfig(cfg)
	doc, _ := ws.Lookup(uri)
	if len(doc.Tree.Markup.Labels) != 1 || doc.Tree.Markup.Labels[0].Name != "x" {
		t.Fatalf("expected reparse with new command, got %+v", doc.Tree.Markup.Labels)
	}
	if doc.Owner != OwnerClient || doc.Version != 1 {
		t.Fatalf("reparse changed identity: %+v", doc)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.tex", `\input{chapters/one}`)
	writeFile(t, dir, "chapters/one.tex", `\label{one}`)
	writeFile(t, dir, "refs.bib", `@article{a, title={A}}`)
	writeFile(t, dir, "readme.md", "# nope")
	writeFile(t, dir, ".git/HEAD.tex", "")

	ws := New(nil)
	var calls atomic.Int32
	res, err := ws.LoadDir(context.Background(), dir, LoadOptions{
		Jobs:  2,
		Owner: OwnerServer,
		OnFile: func(string, error, time.Duration) {
			calls.Add(1)
		},
	})
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(res.Loaded) != 3 || ws.Len() != 3 {
		t.Fatalf("expected 3 documents, got loaded=%v len=%d", res.Loaded, ws.Len())
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 progress callbacks, got %d", calls.Load())
	}
	for _, doc := range ws.Iter() {
		if doc.Owner != OwnerServer {
			t.Fatalf("%s: expected server owner", doc.URI)
		}
	}
}

func TestLoadDirCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.tex", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ws := New(nil)
	if _, err := ws.LoadDir(ctx, dir, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
