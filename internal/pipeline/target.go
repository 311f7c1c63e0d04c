package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"quill/internal/source"
	"quill/internal/syntax"
	"quill/internal/workspace"
)

// ErrNotSource is returned for a file target that is neither LaTeX nor BibTeX.
var ErrNotSource = errors.New("not a LaTeX or BibTeX file")

// Target is the resolved argument of a check run. A file target still loads
// its whole directory so that includes and bibliographies resolve; only the
// file's project is reported.
type Target struct {
	Path  string
	Root  string
	IsDir bool
	// Files lists the sources under Root, absolute and sorted.
	Files []string
}

func ResolveTarget(path string) (Target, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Target{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Target{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	t := Target{Path: abs, Root: abs, IsDir: info.IsDir()}
	if !t.IsDir {
		if _, ok := syntax.LanguageFromPath(abs); !ok {
			return t, fmt.Errorf("%s: %w", path, ErrNotSource)
		}
		t.Root = filepath.Dir(abs)
	}
	files, err := workspace.ListFiles(t.Root)
	if err != nil {
		return t, fmt.Errorf("failed to list %s: %w", t.Root, err)
	}
	t.Files = files
	return t, nil
}

// Display renders path relative to the root, with forward slashes.
func (t Target) Display(path string) string {
	if rel, err := source.RelativePath(path, t.Root); err == nil {
		return rel
	}
	return filepath.ToSlash(path)
}

// DisplayFiles returns Files as display paths.
func (t Target) DisplayFiles() []string {
	out := make([]string, 0, len(t.Files))
	for _, f := range t.Files {
		out = append(out, t.Display(f))
	}
	return out
}
