package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/workspace"
)

func TestPublishDiagnosticsMapping(t *testing.T) {
	server, out := newTestServer(t, ServerOptions{})
	uri := source.URIFromPath(filepath.Join(t.TempDir(), "main.tex"))
	text := "See \\ref{missing}.\n"
	openDoc(t, server, uri, "latex", text)

	server.flushDiagnostics()

	published := publishedBy(t, drain(t, out))
	list, ok := published[string(uri)]
	if !ok {
		t.Fatalf("expected publish for %s, got %v", uri, published)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", list)
	}
	got := list[0]
	if got.Code != diag.LblUndefined.ID() || got.Source != "label" || got.Severity != 1 {
		t.Fatalf("unexpected diagnostic: %+v", got)
	}
	if got.Message != "Undefined reference" {
		t.Fatalf("unexpected message: %q", got.Message)
	}
	wantStart := positionOf(t, text, "\\ref{", 0)
	wantEnd := positionOf(t, text, "missing", 0)
	if got.Range.Start != wantStart || got.Range.End != wantEnd {
		t.Fatalf("unexpected range: %+v", got.Range)
	}
}

func TestPublishClearsFixedDocument(t *testing.T) {
	server, out := newTestServer(t, ServerOptions{})
	uri := source.URIFromPath(filepath.Join(t.TempDir(), "main.tex"))
	openDoc(t, server, uri, "latex", "\\begin{itemize}\n")
	server.flushDiagnostics()
	if list := publishedBy(t, drain(t, out))[string(uri)]; len(list) == 0 {
		t.Fatal("expected grammar diagnostics")
	}

	notify(t, server, "textDocument/didChange", didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: string(uri), Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{
			{Text: "\\begin{itemize}\n\\end{itemize}\n"},
		},
	})
	server.flushDiagnostics()

	list, ok := publishedBy(t, drain(t, out))[string(uri)]
	if !ok {
		t.Fatal("expected a clearing publish")
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
}

func TestIncrementalChangeReparses(t *testing.T) {
	server, out := newTestServer(t, ServerOptions{})
	uri := source.URIFromPath(filepath.Join(t.TempDir(), "main.tex"))
	openDoc(t, server, uri, "latex", "\\label{a}\n\\ref{b}\n")

	notify(t, server, "textDocument/didChange", didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: string(uri), Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{
				Start: position{Line: 1, Character: 5},
				End:   position{Line: 1, Character: 6},
			},
			Text: "a",
		}},
	})
	server.flushDiagnostics()

	for _, d := range publishedBy(t, drain(t, out))[string(uri)] {
		if d.Code == diag.LblUndefined.ID() || d.Code == diag.LblUnused.ID() {
			t.Fatalf("unexpected label diagnostic after edit: %+v", d)
		}
	}
	server.mu.Lock()
	doc, _ := server.ws.Lookup(uri)
	server.mu.Unlock()
	if doc.Text() != "\\label{a}\n\\ref{a}\n" || doc.Version != 2 {
		t.Fatalf("unexpected document state: %q v%d", doc.Text(), doc.Version)
	}
}

func TestDidCloseHandsDocumentBack(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.tex": "on disk\n"})
	server, _ := newTestServer(t, ServerOptions{})
	uri := source.URIFromPath(filepath.Join(dir, "main.tex"))
	openDoc(t, server, uri, "latex", "in editor\n")

	notify(t, server, "textDocument/didClose", didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: string(uri)},
	})

	server.mu.Lock()
	doc, ok := server.ws.Lookup(uri)
	server.mu.Unlock()
	if !ok {
		t.Fatal("expected document to stay in the workspace")
	}
	if doc.Owner != workspace.OwnerServer || doc.Text() != "on disk\n" {
		t.Fatalf("unexpected document after close: owner=%s text=%q", doc.Owner, doc.Text())
	}
}

func TestInitializeLoadsWorkspace(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.tex":         "\\input{chapters/one}\n\\cite{knuth}\n\\bibliography{refs}\n",
		"chapters/one.tex": "\\section{One}\\label{sec:one}\n",
		"refs.bib":         "@book{knuth, title = {The Art}}\n",
		"notes.txt":        "ignored",
		".quill.toml":      "[diagnostics]\nignored_patterns = [\"Unused label\"]\n",
	})
	server, out := newTestServer(t, ServerOptions{})

	request(t, server, "initialize", initializeParams{RootURI: string(source.URIFromPath(dir))})

	msgs := drain(t, out)
	if len(msgs) == 0 {
		t.Fatal("expected initialize response")
	}
	var result initializeResult
	if err := json.Unmarshal(msgs[0].Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Capabilities.ReferencesProvider || result.Capabilities.TextDocumentSync.Change != textDocumentSyncIncremental {
		t.Fatalf("unexpected capabilities: %+v", result.Capabilities)
	}

	server.mu.Lock()
	n := server.ws.Len()
	patterns := server.ws.Config().Diagnostics.IgnoredPatterns
	server.mu.Unlock()
	if n != 3 {
		t.Fatalf("expected 3 documents, got %d", n)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected file config to apply, got %v", patterns)
	}

	server.flushDiagnostics()
	published := publishedBy(t, drain(t, out))
	if len(published) != 0 {
		t.Fatalf("expected a clean workspace, got %+v", published)
	}
}

func TestChktexResultsForClientDocuments(t *testing.T) {
	finding := diag.New(diag.SevWarning, diag.ChkFinding, source.Range{End: source.Position{Character: 3}}, "Command terminated with space.").WithExternalCode("1")
	calls := 0
	server, out := newTestServer(t, ServerOptions{
		Chktex: func(context.Context, config.ChktexConfig, string, string) ([]diag.Diagnostic, error) {
			calls++
			return []diag.Diagnostic{finding}, nil
		},
	})
	uri := source.URIFromPath(filepath.Join(t.TempDir(), "main.tex"))
	openDoc(t, server, uri, "latex", "\\LaTeX is fun\n")
	server.bg.Wait()
	server.flushDiagnostics()

	list := publishedBy(t, drain(t, out))[string(uri)]
	if calls != 1 || len(list) != 1 || list[0].Source != "chktex" || list[0].Severity != 2 {
		t.Fatalf("expected one chktex warning, calls=%d got %+v", calls, list)
	}

	notify(t, server, "textDocument/didClose", didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: string(uri)},
	})
	server.flushDiagnostics()
	if list := publishedBy(t, drain(t, out))[string(uri)]; len(list) != 0 {
		t.Fatalf("expected chktex results to be hidden, got %+v", list)
	}
}

func TestChktexResultsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.tex": "\\LaTeX is fun\n"})
	finding := diag.New(diag.SevWarning, diag.ChkFinding, source.Range{End: source.Position{Character: 3}}, "Command terminated with space.").WithExternalCode("1")
	calls := 0
	server, _ := newTestServer(t, ServerOptions{
		Chktex: func(context.Context, config.ChktexConfig, string, string) ([]diag.Diagnostic, error) {
			calls++
			return []diag.Diagnostic{finding}, nil
		},
	})
	uri := source.URIFromPath(filepath.Join(dir, "main.tex"))
	openDoc(t, server, uri, "latex", "\\LaTeX is fun\n")
	server.bg.Wait()

	notify(t, server, "textDocument/didClose", didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: string(uri)},
	})
	server.mu.Lock()
	hidden := len(withCode(server.diags.Get(server.ws).Get(uri), diag.ChkFinding))
	server.mu.Unlock()
	if hidden != 0 {
		t.Fatalf("closed document must not show chktex results, got %d", hidden)
	}

	notify(t, server, "workspace/didChangeConfiguration", didChangeConfigurationParams{
		Settings: json.RawMessage(`{"quill":{"chktex":{"onOpenAndSave":false}}}`),
	})
	openDoc(t, server, uri, "latex", "\\LaTeX is fun\n")
	server.bg.Wait()

	server.mu.Lock()
	visible := len(withCode(server.diags.Get(server.ws).Get(uri), diag.ChkFinding))
	server.mu.Unlock()
	if calls != 1 || visible != 1 {
		t.Fatalf("expected the stored result to reappear without a new run, calls=%d visible=%d", calls, visible)
	}
}

func TestChktexFailureStoresNothing(t *testing.T) {
	server, _ := newTestServer(t, ServerOptions{
		Chktex: func(context.Context, config.ChktexConfig, string, string) ([]diag.Diagnostic, error) {
			return nil, errors.New("chktex: exit status 2")
		},
	})
	uri := source.URIFromPath(filepath.Join(t.TempDir(), "main.tex"))
	openDoc(t, server, uri, "latex", "text\n")
	server.bg.Wait()

	server.mu.Lock()
	defer server.mu.Unlock()
	if got := server.diags.Get(server.ws).Get(uri); len(got) != 0 {
		t.Fatalf("failed chktex run must not store diagnostics, got %+v", got)
	}
}

func TestDidChangeConfigurationFilters(t *testing.T) {
	server, out := newTestServer(t, ServerOptions{})
	uri := source.URIFromPath(filepath.Join(t.TempDir(), "main.tex"))
	openDoc(t, server, uri, "latex", "\\ref{missing}\n")

	notify(t, server, "workspace/didChangeConfiguration", didChangeConfigurationParams{
		Settings: json.RawMessage(`{"quill":{"diagnostics":{"ignoredPatterns":["^Undefined"]},"chktex":{"onEdit":true}}}`),
	})
	server.flushDiagnostics()

	if list := publishedBy(t, drain(t, out))[string(uri)]; len(list) != 0 {
		t.Fatalf("expected diagnostics to be filtered, got %+v", list)
	}
	server.mu.Lock()
	onEdit := server.ws.Config().Chktex.OnEdit
	server.mu.Unlock()
	if !onEdit {
		t.Fatal("expected chktex.onEdit to be applied")
	}
}

func TestSettingsKeepFileValues(t *testing.T) {
	base := config.Default()
	base.Build.LogDirectory = "build"
	base.Chktex.AdditionalArgs = []string{"-n1"}

	settings, err := decodeSettings(json.RawMessage(`{"quill":{"rootDirectory":"src","build":{"auxDirectory":"aux"}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	cfg := settings.apply(base, "/ws")
	if cfg.Build.LogDirectory != "build" || cfg.Build.AuxDirectory != "aux" {
		t.Fatalf("unexpected build config: %+v", cfg.Build)
	}
	if len(cfg.Chktex.AdditionalArgs) != 1 {
		t.Fatalf("expected file args to survive, got %v", cfg.Chktex.AdditionalArgs)
	}
	if cfg.RootDirectory != filepath.Join("/ws", "src") {
		t.Fatalf("unexpected root directory %q", cfg.RootDirectory)
	}
	if base.Build.AuxDirectory == "aux" {
		t.Fatal("base config must not be modified")
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	server, _ := newTestServer(t, ServerOptions{})
	err := server.handleMessage(&rpcMessage{Method: "exit"})
	if !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("expected ErrExitWithoutShutdown, got %v", err)
	}
	request(t, server, "shutdown", nil)
	if err := server.handleMessage(&rpcMessage{Method: "exit"}); !errors.Is(err, ErrExit) {
		t.Fatalf("expected ErrExit, got %v", err)
	}
}

func TestUnknownRequestIsRejected(t *testing.T) {
	server, out := newTestServer(t, ServerOptions{})
	request(t, server, "textDocument/rename", map[string]any{})
	msgs := drain(t, out)
	if len(msgs) != 1 || msgs[0].Error == nil || msgs[0].Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", msgs)
	}
}

func TestRunStopsOnExit(t *testing.T) {
	var in bytes.Buffer
	for _, body := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	} {
		if err := writeMessage(&in, []byte(body)); err != nil {
			t.Fatalf("write message: %v", err)
		}
	}
	server := NewServer(&in, io.Discard, ServerOptions{Distro: noDistro, Chktex: noChktex})
	if err := server.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("expected ErrExit, got %v", err)
	}
}
