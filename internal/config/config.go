package config

import (
	"slices"
	"time"

	"quill/internal/syntax/latex"
)

// FileName is the per-project configuration file looked up from the workspace root upwards.
const FileName = ".quill.toml"

// Config is the workspace-wide configuration. Values are treated as
// immutable once handed to a workspace; use Clone before modifying.
type Config struct {
	// RootDirectory overrides the directory used to resolve include paths.
	RootDirectory string            `toml:"root_directory"`
	Diagnostics   DiagnosticsConfig `toml:"diagnostics"`
	Chktex        ChktexConfig      `toml:"chktex"`
	Build         BuildConfig       `toml:"build"`
	Syntax        SyntaxConfig      `toml:"syntax"`
	Distro        DistroConfig      `toml:"distro"`

	// Warnings collects non-fatal problems found while loading (unknown keys, bad patterns).
	Warnings []string `toml:"-"`
}

type DiagnosticsConfig struct {
	AllowedPatterns []string `toml:"allowed_patterns"`
	IgnoredPatterns []string `toml:"ignored_patterns"`
	// DelayMS debounces publishing after edits.
	DelayMS int `toml:"delay_ms"`

	patterns *Patterns
}

// Delay returns the publish debounce interval.
func (d DiagnosticsConfig) Delay() time.Duration {
	return time.Duration(d.DelayMS) * time.Millisecond
}

// Patterns returns the compiled allow/deny filter. A config that was never
// finalized accepts every message.
func (d DiagnosticsConfig) Patterns() *Patterns {
	return d.patterns
}

type ChktexConfig struct {
	OnOpenAndSave  bool     `toml:"on_open_and_save"`
	OnEdit         bool     `toml:"on_edit"`
	AdditionalArgs []string `toml:"additional_args"`
	Executable     string   `toml:"executable"`
	TimeoutMS      int      `toml:"timeout_ms"`
}

// Timeout bounds a single chktex run.
func (c ChktexConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

type BuildConfig struct {
	// AuxDirectory and LogDirectory are relative to the root directory unless absolute.
	AuxDirectory string `toml:"aux_directory"`
	LogDirectory string `toml:"log_directory"`
}

// SyntaxConfig adds commands on top of the built-in tables.
type SyntaxConfig struct {
	VerbatimEnvironments    []string `toml:"verbatim_environments"`
	LabelDefinitionCommands []string `toml:"label_definition_commands"`
	LabelReferenceCommands  []string `toml:"label_reference_commands"`
	CitationCommands        []string `toml:"citation_commands"`
}

// LatexOptions merges the configured commands into the parser defaults.
func (s SyntaxConfig) LatexOptions() latex.Options {
	return latex.DefaultOptions().Merge(latex.Options{
		VerbatimEnvironments:    s.VerbatimEnvironments,
		LabelDefinitionCommands: s.LabelDefinitionCommands,
		LabelReferenceCommands:  s.LabelReferenceCommands,
		CitationCommands:        s.CitationCommands,
	})
}

// IsVerbatim reports whether env is a raw environment, built-in or configured.
func (s SyntaxConfig) IsVerbatim(env string) bool {
	return slices.Contains(s.LatexOptions().VerbatimEnvironments, env)
}

type DistroConfig struct {
	// Roots overrides TEXMF discovery via kpsewhich.
	Roots     []string `toml:"roots"`
	Kpsewhich string   `toml:"kpsewhich"`
	CacheDir  string   `toml:"cache_dir"`
	Disabled  bool     `toml:"disabled"`
}

// Default returns the configuration used when no file or client settings exist.
func Default() *Config {
	cfg := &Config{
		Diagnostics: DiagnosticsConfig{DelayMS: 300},
		Chktex: ChktexConfig{
			OnOpenAndSave: true,
			Executable:    "chktex",
			TimeoutMS:     10_000,
		},
		Build: BuildConfig{AuxDirectory: ".", LogDirectory: "."},
	}
	_ = cfg.Finalize()
	return cfg
}

// Finalize compiles the diagnostic filter. Invalid patterns are skipped and
// reported both in the returned error and in Warnings.
func (c *Config) Finalize() error {
	p, err := CompilePatterns(c.Diagnostics.AllowedPatterns, c.Diagnostics.IgnoredPatterns)
	c.Diagnostics.patterns = p
	if err != nil {
		c.Warnings = append(c.Warnings, err.Error())
	}
	if c.Diagnostics.DelayMS < 0 {
		c.Diagnostics.DelayMS = 0
	}
	return err
}

// Clone returns a deep copy. The compiled pattern set is shared; it is immutable.
func (c *Config) Clone() *Config {
	if c == nil {
		return Default()
	}
	out := *c
	out.Diagnostics.AllowedPatterns = slices.Clone(c.Diagnostics.AllowedPatterns)
	out.Diagnostics.IgnoredPatterns = slices.Clone(c.Diagnostics.IgnoredPatterns)
	out.Chktex.AdditionalArgs = slices.Clone(c.Chktex.AdditionalArgs)
	out.Syntax.VerbatimEnvironments = slices.Clone(c.Syntax.VerbatimEnvironments)
	out.Syntax.LabelDefinitionCommands = slices.Clone(c.Syntax.LabelDefinitionCommands)
	out.Syntax.LabelReferenceCommands = slices.Clone(c.Syntax.LabelReferenceCommands)
	out.Syntax.CitationCommands = slices.Clone(c.Syntax.CitationCommands)
	out.Distro.Roots = slices.Clone(c.Distro.Roots)
	out.Warnings = slices.Clone(c.Warnings)
	return &out
}
