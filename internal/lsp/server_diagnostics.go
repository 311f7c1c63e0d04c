package lsp

import (
	"slices"
	"time"

	"quill/internal/diag"
	"quill/internal/source"
)

// scheduleDiagnostics (re)arms the publish timer. Bursts of edits collapse
// into a single publication after the configured delay.
func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagSeq++
	seq := s.diagSeq
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	delay := s.debounce
	if delay <= 0 {
		delay = s.ws.Config().Diagnostics.Delay()
	}
	s.debounceTimer = time.AfterFunc(delay, func() {
		s.publishIfLatest(seq)
	})
}

func (s *Server) publishIfLatest(seq uint64) {
	s.mu.Lock()
	latest := s.diagSeq == seq
	done := s.baseCtx.Err() != nil
	s.mu.Unlock()
	if !latest || done {
		return
	}
	s.publishDiagnostics()
}

// flushDiagnostics cancels a pending timer and publishes immediately.
func (s *Server) flushDiagnostics() {
	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.diagSeq++
	s.mu.Unlock()
	s.publishDiagnostics()
}

// publishDiagnostics sends the full diagnostic set and clears URIs that
// had diagnostics before but have none now.
func (s *Server) publishDiagnostics() {
	s.mu.Lock()
	if s.shutdownRequested {
		s.mu.Unlock()
		return
	}
	set := s.diags.Get(s.ws)
	targets := set.URIs()
	prev := s.published
	s.published = make(map[source.URI]struct{}, len(targets))
	for _, uri := range targets {
		s.published[uri] = struct{}{}
	}
	var stale []source.URI
	for uri := range prev {
		if _, ok := s.published[uri]; !ok {
			stale = append(stale, uri)
		}
	}
	verbose := s.traceLSP
	s.mu.Unlock()

	for _, uri := range targets {
		list := convertDiagnostics(set.Get(uri))
		if err := s.sendPublish(string(uri), list); err != nil {
			s.logf("failed to publish diagnostics: %v", err)
		}
		if verbose {
			s.logf("publish: uri=%s count=%d", uri, len(list))
		}
	}
	slices.Sort(stale)
	for _, uri := range stale {
		if err := s.sendPublish(string(uri), nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	if len(s.published) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.published
	s.published = make(map[source.URI]struct{})
	s.mu.Unlock()
	uris := make([]source.URI, 0, len(prev))
	for uri := range prev {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	for _, uri := range uris {
		if err := s.sendPublish(string(uri), nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func convertDiagnostics(ds []diag.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(ds))
	for i := range ds {
		out = append(out, convertDiagnostic(&ds[i]))
	}
	return out
}

func convertDiagnostic(d *diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Range:    d.Range,
		Severity: d.Severity.LSP(),
		Code:     d.CodeID(),
		Source:   d.Origin().String(),
		Message:  d.Message,
	}
	for _, tag := range d.Tags {
		out.Tags = append(out.Tags, int(tag))
	}
	for _, rel := range d.Related {
		out.RelatedInformation = append(out.RelatedInformation, diagnosticRelatedInformation{
			Location: location{URI: string(rel.URI), Range: rel.Range},
			Message:  rel.Message,
		})
	}
	return out
}
