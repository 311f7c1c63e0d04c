package lsp

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"quill/internal/config"
	"quill/internal/source"
	"quill/internal/trace"
	"quill/internal/workspace"
)

// resolveRoot picks the workspace root from rootUri, rootPath or the first
// workspace folder, in that order. It returns "" when none is usable.
func resolveRoot(params initializeParams) string {
	root := ""
	if params.RootURI != "" {
		root = source.ParseURI(params.RootURI).Path()
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = source.ParseURI(params.WorkspaceFolders[0].URI).Path()
	}
	if root == "" {
		return ""
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}
	return root
}

// initWorkspace loads .quill.toml, reads every LaTeX and BibTeX file under
// root as a server document and starts the background services.
func (s *Server) initWorkspace(root string, initOptions json.RawMessage) {
	span := trace.Begin(s.tracer, trace.ScopeServer, "workspace.init", 0)
	defer span.Attr("root", root).End("")

	fileCfg := config.Default()
	if root != "" {
		cfg, path, err := config.LoadForRoot(root)
		if err != nil {
			s.logf("config %s: %v", path, err)
		}
		fileCfg = cfg
	}
	settings, err := decodeSettings(initOptions)
	if err != nil {
		s.logf("invalid initialization options: %v", err)
	}

	s.mu.Lock()
	s.root = root
	s.fileCfg = fileCfg
	s.settings = settings
	if settings.LSP.Trace != nil {
		s.traceLSP = *settings.LSP.Trace
	}
	cfg := settings.apply(fileCfg, root)
	s.ws.SetConfig(cfg)
	if root != "" {
		s.ws.SetRoot(source.URIFromPath(root))
		s.loadRootLocked(root)
	}
	ctx := s.baseCtx
	s.mu.Unlock()

	for _, w := range cfg.Warnings {
		s.logf("config: %s", w)
	}
	if root == "" {
		return
	}
	if !cfg.Distro.Disabled {
		s.startDistro(ctx, cfg)
	}
	if s.watchEnabled {
		s.startWatcher(ctx, root)
	}
	s.scheduleDiagnostics()
}

// loadRootLocked parses the workspace tree and computes its diagnostics.
// The caller holds s.mu.
func (s *Server) loadRootLocked(root string) {
	started := time.Now()
	res, err := s.ws.LoadDir(s.baseCtx, root, workspace.LoadOptions{
		Jobs:  s.jobs,
		Owner: workspace.OwnerServer,
	})
	if err != nil {
		s.logf("load workspace %s: %v", root, err)
	}
	for path, ferr := range res.Failed {
		if !errors.Is(ferr, workspace.ErrUnknownLanguage) {
			s.logf("load %s: %v", path, ferr)
		}
	}
	s.ws.Discover()
	for _, doc := range s.ws.Iter() {
		s.diags.UpdateSyntax(s.ws, doc)
	}
	if s.traceLSP {
		s.logf("workspace loaded: root=%s documents=%d elapsed=%s", root, s.ws.Len(), time.Since(started).Round(time.Millisecond))
	}
}
