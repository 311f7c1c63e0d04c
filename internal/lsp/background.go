package lsp

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"quill/internal/chktex"
	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/distro"
	"quill/internal/source"
	"quill/internal/syntax"
	"quill/internal/watch"
	"quill/internal/workspace"
)

func runChktex(ctx context.Context, cfg config.ChktexConfig, dir, text string) ([]diag.Diagnostic, error) {
	r := chktex.Runner{
		Executable: cfg.Executable,
		Args:       cfg.AdditionalArgs,
		Timeout:    cfg.Timeout(),
	}
	return r.Run(ctx, dir, text)
}

func loadDistro(ctx context.Context, cfg *config.Config) (workspace.Resolver, error) {
	ix, err := distro.LoadConfigured(ctx, cfg.Distro)
	if ix == nil {
		return nil, err
	}
	return ix, err
}

// scheduleChktex lints doc in the background. A result is stored only if
// no newer run was started for the same document and the client still
// owns it.
func (s *Server) scheduleChktex(doc *workspace.Document) {
	if !doc.IsMarkup() || doc.Owner != workspace.OwnerClient {
		return
	}
	s.mu.Lock()
	s.chktexSeq[doc.URI]++
	seq := s.chktexSeq[doc.URI]
	cfg := s.ws.Config().Chktex
	ctx := s.baseCtx
	s.mu.Unlock()

	dir := filepath.Dir(doc.URI.Path())
	text := doc.Text()
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		found, err := s.chktex(ctx, cfg, dir, text)
		if err != nil {
			s.reportChktexError(err)
			return
		}
		s.mu.Lock()
		cur, ok := s.ws.Lookup(doc.URI)
		if !ok || s.chktexSeq[doc.URI] != seq || cur.Owner != workspace.OwnerClient {
			s.mu.Unlock()
			return
		}
		s.diags.UpdateChktex(doc.URI, found)
		s.mu.Unlock()
		s.scheduleDiagnostics()
	}()
}

func (s *Server) reportChktexError(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if errors.Is(err, chktex.ErrNotInstalled) {
		s.mu.Lock()
		first := !s.chktexMissing
		s.chktexMissing = true
		s.mu.Unlock()
		if first {
			s.logf("%v; linting disabled until it is installed", err)
		}
		return
	}
	s.logf("%v", err)
}

// startDistro builds the distribution index off the request loop and then
// resolves the packages the workspace refers to.
func (s *Server) startDistro(ctx context.Context, cfg *config.Config) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		resolver, err := s.distro(ctx, cfg)
		if err != nil {
			s.logf("distro: %v", err)
		}
		if resolver == nil || ctx.Err() != nil {
			return
		}
		s.mu.Lock()
		s.ws.SetDistro(resolver)
		added := s.ws.Discover()
		s.mu.Unlock()
		if len(added) > 0 {
			s.scheduleDiagnostics()
		}
	}()
}

func (s *Server) startWatcher(ctx context.Context, root string) {
	w, err := watch.New(root, s.handleFileChanges, watch.DefaultOptions())
	if err != nil {
		s.logf("watch: %v", err)
		return
	}
	if err := w.Start(ctx); err != nil {
		s.logf("watch: %v", err)
		return
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
}

// handleFileChanges brings server documents in line with the disk. Client
// documents are left alone; a changed build log reanalyses the documents
// that produce it.
func (s *Server) handleFileChanges(changes []watch.Change) {
	s.mu.Lock()
	touched := false
	var logs []string
	for _, ch := range changes {
		if strings.EqualFold(filepath.Ext(ch.Path), ".log") {
			logs = append(logs, strings.TrimSuffix(filepath.Base(ch.Path), filepath.Ext(ch.Path)))
			continue
		}
		if _, ok := syntax.LanguageFromPath(ch.Path); !ok {
			continue
		}
		uri := source.URIFromPath(ch.Path)
		cur, exists := s.ws.Lookup(uri)
		if exists && cur.Owner == workspace.OwnerClient {
			continue
		}
		switch ch.Op {
		case watch.OpRemove, watch.OpRename:
			if exists {
				s.ws.Remove(uri)
				touched = true
			}
		default:
			doc, err := s.ws.Load(ch.Path, workspace.OwnerServer)
			if err != nil {
				continue
			}
			s.diags.UpdateSyntax(s.ws, doc)
			touched = true
		}
	}
	for _, uri := range s.ws.Discover() {
		if doc, ok := s.ws.Lookup(uri); ok {
			s.diags.UpdateSyntax(s.ws, doc)
		}
		touched = true
	}
	if len(logs) > 0 {
		for _, doc := range s.ws.Iter() {
			if doc.IsMarkup() && containsFold(logs, doc.URI.Stem()) {
				s.diags.UpdateSyntax(s.ws, doc)
				touched = true
			}
		}
	}
	s.mu.Unlock()
	if touched {
		s.scheduleDiagnostics()
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
