// Package diagfmt renders diagnostic sets for the command line.
package diagfmt

import (
	"path/filepath"

	"quill/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses a path relative to BaseDir when the file lies below it.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeBasename
)

// Files supplies document text for source excerpts; *workspace.Workspace
// implements it.
type Files interface {
	File(uri source.URI) *source.File
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	BaseDir  string
	// Context is the number of source lines shown around the primary line.
	Context int
	// TabWidth expands tabs in excerpts; 0 means 4.
	TabWidth    int
	ShowRelated bool
	// Max limits the number of diagnostics printed; 0 means all.
	Max int
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode       PathMode
	BaseDir        string
	IncludeRelated bool
	Max            int // обрезка вывода, не Set
}

func formatPath(uri source.URI, mode PathMode, baseDir string) string {
	p := uri.Path()
	if p == "" {
		return string(uri)
	}
	switch mode {
	case PathModeAbsolute:
		return filepath.ToSlash(p)
	case PathModeBasename:
		return filepath.Base(p)
	default:
		if baseDir == "" {
			return filepath.ToSlash(p)
		}
		if rel, err := source.RelativePath(p, baseDir); err == nil {
			return rel
		}
		return filepath.ToSlash(p)
	}
}
