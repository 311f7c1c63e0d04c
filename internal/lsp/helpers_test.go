package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/diagnostics"
	"quill/internal/source"
	"quill/internal/workspace"
)

type noLogs struct{}

func (noLogs) Find(*workspace.Workspace, *workspace.Document) (diagnostics.BuildLog, bool) {
	return diagnostics.BuildLog{}, false
}

func noDistro(context.Context, *config.Config) (workspace.Resolver, error) {
	return nil, nil
}

func noChktex(context.Context, config.ChktexConfig, string, string) ([]diag.Diagnostic, error) {
	return nil, nil
}

// newTestServer returns a server whose external tools are stubbed out and
// whose debounce never fires on its own.
func newTestServer(t *testing.T, opts ServerOptions) (*Server, *bytes.Buffer) {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = time.Hour
	}
	if opts.BuildLogs == nil {
		opts.BuildLogs = noLogs{}
	}
	if opts.Distro == nil {
		opts.Distro = noDistro
	}
	if opts.Chktex == nil {
		opts.Chktex = noChktex
	}
	var out bytes.Buffer
	server := NewServer(bytes.NewReader(nil), &out, opts)
	t.Cleanup(server.stop)
	return server, &out
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func notify(t *testing.T, s *Server, method string, params any) {
	t.Helper()
	if err := s.handleMessage(&rpcMessage{JSONRPC: "2.0", Method: method, Params: mustMarshal(t, params)}); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func request(t *testing.T, s *Server, method string, params any) {
	t.Helper()
	msg := &rpcMessage{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: method, Params: mustMarshal(t, params)}
	if err := s.handleMessage(msg); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func openDoc(t *testing.T, s *Server, uri source.URI, lang, text string) {
	t.Helper()
	notify(t, s, "textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: string(uri), LanguageID: lang, Version: 1, Text: text},
	})
}

// drain decodes every framed message written so far and resets out.
func drain(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	out.Reset()
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if err != nil {
			break
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// publishedBy collects publishDiagnostics notifications by URI; later
// notifications for the same URI win.
func publishedBy(t *testing.T, msgs []rpcMessage) map[string][]lspDiagnostic {
	t.Helper()
	out := make(map[string][]lspDiagnostic)
	for _, msg := range msgs {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params publishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		out[params.URI] = params.Diagnostics
	}
	return out
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
}

func positionForOffsetUTF16(text string, offset int) position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	line := strings.Count(text[:offset], "\n")
	lineStart := strings.LastIndex(text[:offset], "\n")
	if lineStart == -1 {
		lineStart = 0
	} else {
		lineStart++
	}
	units := 0
	for _, r := range text[lineStart:offset] {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
	}
	return position{Line: line, Character: units}
}

// positionOf returns the position just after the first occurrence of
// marker in text, shifted back by back bytes.
func positionOf(t *testing.T, text, marker string, back int) position {
	t.Helper()
	idx := strings.Index(text, marker)
	if idx < 0 {
		t.Fatalf("marker %q not found", marker)
	}
	return positionForOffsetUTF16(text, idx+len(marker)-back)
}

func withCode(ds []diag.Diagnostic, code diag.Code) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
