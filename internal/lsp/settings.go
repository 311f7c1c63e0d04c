package lsp

import (
	"encoding/json"
	"path/filepath"

	"quill/internal/config"
)

// lspSettings mirrors the client configuration section. Every leaf is a
// pointer so that an absent key keeps the value from .quill.toml.
type lspSettings struct {
	Quill quillSettings `json:"quill"`
}

type quillSettings struct {
	RootDirectory *string             `json:"rootDirectory,omitempty"`
	Diagnostics   diagnosticsSettings `json:"diagnostics"`
	Chktex        chktexSettings      `json:"chktex"`
	Build         buildSettings       `json:"build"`
	Syntax        syntaxSettings      `json:"syntax"`
	LSP           lspTraceSettings    `json:"lsp"`
}

type diagnosticsSettings struct {
	AllowedPatterns *[]string `json:"allowedPatterns,omitempty"`
	IgnoredPatterns *[]string `json:"ignoredPatterns,omitempty"`
	Delay           *int      `json:"delay,omitempty"`
}

type chktexSettings struct {
	OnOpenAndSave  *bool     `json:"onOpenAndSave,omitempty"`
	OnEdit         *bool     `json:"onEdit,omitempty"`
	AdditionalArgs *[]string `json:"additionalArgs,omitempty"`
	Executable     *string   `json:"executable,omitempty"`
}

type buildSettings struct {
	AuxDirectory *string `json:"auxDirectory,omitempty"`
	LogDirectory *string `json:"logDirectory,omitempty"`
}

type syntaxSettings struct {
	VerbatimEnvironments    *[]string `json:"verbatimEnvironments,omitempty"`
	LabelDefinitionCommands *[]string `json:"labelDefinitionCommands,omitempty"`
	LabelReferenceCommands  *[]string `json:"labelReferenceCommands,omitempty"`
	CitationCommands        *[]string `json:"citationCommands,omitempty"`
}

type lspTraceSettings struct {
	Trace *bool `json:"trace,omitempty"`
}

func decodeSettings(raw json.RawMessage) (quillSettings, error) {
	var settings lspSettings
	if len(raw) == 0 {
		return settings.Quill, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return quillSettings{}, err
	}
	return settings.Quill, nil
}

// apply returns base with the client settings laid over it. base is not
// modified. A relative rootDirectory is taken relative to root.
func (q quillSettings) apply(base *config.Config, root string) *config.Config {
	cfg := base.Clone()
	cfg.Warnings = nil
	setString(&cfg.RootDirectory, q.RootDirectory)
	if cfg.RootDirectory != "" && !filepath.IsAbs(cfg.RootDirectory) && root != "" {
		cfg.RootDirectory = filepath.Join(root, filepath.FromSlash(cfg.RootDirectory))
	}

	setStrings(&cfg.Diagnostics.AllowedPatterns, q.Diagnostics.AllowedPatterns)
	setStrings(&cfg.Diagnostics.IgnoredPatterns, q.Diagnostics.IgnoredPatterns)
	if q.Diagnostics.Delay != nil {
		cfg.Diagnostics.DelayMS = *q.Diagnostics.Delay
	}

	if q.Chktex.OnOpenAndSave != nil {
		cfg.Chktex.OnOpenAndSave = *q.Chktex.OnOpenAndSave
	}
	if q.Chktex.OnEdit != nil {
		cfg.Chktex.OnEdit = *q.Chktex.OnEdit
	}
	setStrings(&cfg.Chktex.AdditionalArgs, q.Chktex.AdditionalArgs)
	setString(&cfg.Chktex.Executable, q.Chktex.Executable)

	setString(&cfg.Build.AuxDirectory, q.Build.AuxDirectory)
	setString(&cfg.Build.LogDirectory, q.Build.LogDirectory)

	setStrings(&cfg.Syntax.VerbatimEnvironments, q.Syntax.VerbatimEnvironments)
	setStrings(&cfg.Syntax.LabelDefinitionCommands, q.Syntax.LabelDefinitionCommands)
	setStrings(&cfg.Syntax.LabelReferenceCommands, q.Syntax.LabelReferenceCommands)
	setStrings(&cfg.Syntax.CitationCommands, q.Syntax.CitationCommands)

	_ = cfg.Finalize()
	return cfg
}

func setString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setStrings(dst, src *[]string) {
	if src != nil {
		*dst = append([]string(nil), (*src)...)
	}
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

// applySettings merges client settings over the file configuration and
// reanalyses every document, since command tables affect parsing.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	settings, err := decodeSettings(raw)
	if err != nil {
		s.logf("invalid settings: %v", err)
		return
	}
	s.mu.Lock()
	s.settings = settings
	if settings.LSP.Trace != nil {
		s.traceLSP = *settings.LSP.Trace
	}
	cfg := s.reconfigureLocked()
	s.mu.Unlock()
	for _, w := range cfg.Warnings {
		s.logf("config: %s", w)
	}
	s.scheduleDiagnostics()
}

// reconfigureLocked rebuilds the effective configuration and reparses the
// workspace with it. The caller holds s.mu.
func (s *Server) reconfigureLocked() *config.Config {
	cfg := s.settings.apply(s.fileCfg, s.root)
	s.ws.SetConfig(cfg)
	for _, doc := range s.ws.Iter() {
		s.diags.UpdateSyntax(s.ws, doc)
	}
	return cfg
}
