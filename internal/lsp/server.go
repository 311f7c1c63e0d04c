package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/diagnostics"
	"quill/internal/source"
	"quill/internal/syntax"
	"quill/internal/trace"
	"quill/internal/watch"
	"quill/internal/workspace"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ChktexFunc lints one document. dir is the document's directory.
type ChktexFunc func(ctx context.Context, cfg config.ChktexConfig, dir, text string) ([]diag.Diagnostic, error)

// DistroFunc builds the TeX distribution index used to resolve packages.
type DistroFunc func(ctx context.Context, cfg *config.Config) (workspace.Resolver, error)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Debounce overrides the configured diagnostics delay when positive.
	Debounce time.Duration
	// Chktex defaults to running the chktex binary.
	Chktex ChktexFunc
	// Distro defaults to kpsewhich discovery with the on-disk cache. It is
	// skipped when the configuration disables it.
	Distro DistroFunc
	// BuildLogs defaults to looking next to each document.
	BuildLogs diagnostics.BuildLogSource
	// Watch enables file system notifications for the workspace root.
	Watch bool
	// Jobs bounds parallel parsing while loading the workspace.
	Jobs    int
	Tracer  trace.Tracer
	Version string
}

// Server handles stdio JSON-RPC for the quill LSP. The workspace and the
// diagnostics manager are not safe for concurrent use; every access goes
// through mu.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	mu     sync.Mutex

	ws       *workspace.Workspace
	diags    *diagnostics.Manager
	fileCfg  *config.Config
	settings quillSettings
	root     string

	published         map[source.URI]struct{}
	shutdownRequested bool
	debounce          time.Duration
	debounceTimer     *time.Timer
	diagSeq           uint64
	chktexSeq         map[source.URI]uint64
	chktexMissing     bool
	traceLSP          bool

	chktex       ChktexFunc
	distro       DistroFunc
	watchEnabled bool
	watcher      *watch.Watcher
	jobs         int
	version      string
	tracer       trace.Tracer

	baseCtx context.Context
	cancel  context.CancelFunc
	bg      sync.WaitGroup
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	chktexFn := opts.Chktex
	if chktexFn == nil {
		chktexFn = runChktex
	}
	distroFn := opts.Distro
	if distroFn == nil {
		distroFn = loadDistro
	}
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		ws:        workspace.New(cfg),
		diags:     diagnostics.NewManager(diagnostics.ManagerOptions{BuildLogs: opts.BuildLogs, Tracer: tracer}),
		fileCfg:   cfg,
		published: make(map[source.URI]struct{}),
		chktexSeq: make(map[source.URI]uint64),
		debounce:  opts.Debounce,

		chktex:       chktexFn,
		distro:       distroFn,
		watchEnabled: opts.Watch,
		jobs:         opts.Jobs,
		version:      opts.Version,
		tracer:       tracer,
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// Run serves LSP requests until exit or end of input. Background work
// (chktex, distro indexing, the watcher) is stopped before it returns.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	defer s.stop()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) stop() {
	s.mu.Lock()
	s.cancel()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
	s.bg.Wait()
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	span := trace.Begin(s.tracer, trace.ScopeRequest, msg.Method, 0)
	defer span.End("")
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/references":
		return s.handleReferences(msg)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := resolveRoot(params)
	s.initWorkspace(root, params.InitializationOptions)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    textDocumentSyncIncremental,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			ReferencesProvider: true,
			CompletionProvider: &completionOptions{
				TriggerCharacters: []string{"{", ","},
			},
			FoldingRangeProvider: true,
		},
		ServerInfo: &serverInfo{Name: "quill", Version: s.version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := source.ParseURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	lang, ok := syntax.LanguageFromID(params.TextDocument.LanguageID)
	if !ok {
		lang, ok = syntax.LanguageFromPath(uri.Path())
	}
	if !ok {
		return nil
	}
	s.mu.Lock()
	doc := s.ws.Open(uri, params.TextDocument.Text, lang, workspace.OwnerClient, params.TextDocument.Version)
	added := s.ws.Discover()
	s.updateSyntaxLocked(doc, added)
	chk := s.ws.Config().Chktex.OnOpenAndSave
	s.mu.Unlock()
	if chk {
		s.scheduleChktex(doc)
	}
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := source.ParseURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	cur, ok := s.ws.Lookup(uri)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	text := applyChanges(cur.Text(), params.ContentChanges)
	doc := s.ws.Open(uri, text, cur.Language, workspace.OwnerClient, params.TextDocument.Version)
	added := s.ws.Discover()
	s.updateSyntaxLocked(doc, added)
	chk := s.ws.Config().Chktex.OnEdit
	verbose := s.traceLSP
	s.mu.Unlock()
	if verbose {
		s.logf("didChange: uri=%s version=%d", uri, params.TextDocument.Version)
	}
	if chk {
		s.scheduleChktex(doc)
	}
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := source.ParseURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	doc, ok := s.ws.Lookup(uri)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if params.Text != nil && *params.Text != doc.Text() {
		doc = s.ws.Open(uri, *params.Text, doc.Language, doc.Owner, doc.Version)
	}
	// сборка могла обновить лог, поэтому пересчитываем всегда
	s.updateSyntaxLocked(doc, s.ws.Discover())
	chk := s.ws.Config().Chktex.OnOpenAndSave
	s.mu.Unlock()
	if chk {
		s.scheduleChktex(doc)
	}
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := source.ParseURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if s.ws.Close(uri) {
		if doc, ok := s.ws.Lookup(uri); ok {
			s.diags.UpdateSyntax(s.ws, doc)
		}
	}
	// запущенный chktex устарел; сохранённые результаты скрывает смена владельца
	s.chktexSeq[uri]++
	s.mu.Unlock()
	s.scheduleDiagnostics()
	return nil
}

// updateSyntaxLocked reanalyses doc and any documents Discover just added.
func (s *Server) updateSyntaxLocked(doc *workspace.Document, added []source.URI) {
	s.diags.UpdateSyntax(s.ws, doc)
	for _, uri := range added {
		if d, ok := s.ws.Lookup(uri); ok {
			s.diags.UpdateSyntax(s.ws, d)
		}
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}
