package workspace

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"quill/internal/source"
	"quill/internal/syntax"
)

// LoadOptions tunes LoadDir.
type LoadOptions struct {
	// Jobs bounds parallel parsing; <= 0 means GOMAXPROCS.
	Jobs int
	// Owner is assigned to every loaded document, usually OwnerServer.
	Owner Owner
	// OnFile is called once per file after it was parsed (or failed to load).
	// It may be called from several goroutines.
	OnFile func(path string, err error, elapsed time.Duration)
}

// LoadResult reports what LoadDir did.
type LoadResult struct {
	Loaded []source.URI
	Failed map[string]error
}

// ListFiles returns every LaTeX or BibTeX file under dir, sorted. Hidden
// directories are skipped.
func ListFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := syntax.LanguageFromPath(path); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// детерминированный порядок
	sort.Strings(files)
	return files, nil
}

// LoadDir reads and parses every source file under dir in parallel, then
// inserts the documents sequentially. Client-owned documents are kept.
func (w *Workspace) LoadDir(ctx context.Context, dir string, opts LoadOptions) (LoadResult, error) {
	res := LoadResult{Failed: make(map[string]error)}
	files, err := ListFiles(dir)
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		return res, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	docs := make([]*Document, len(files))
	errs := make([]error, len(files))
	cfg := w.cfg

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			lang, _ := syntax.LanguageFromPath(path)
			file, loadErr := source.LoadFile(path)
			if loadErr == nil {
				docs[i] = newDocumentFromFile(source.URIFromPath(path), file, lang, opts.Owner, 0, cfg)
			}
			errs[i] = loadErr
			if opts.OnFile != nil {
				opts.OnFile(path, loadErr, time.Since(start))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for i, doc := range docs {
		if errs[i] != nil {
			res.Failed[files[i]] = errs[i]
			continue
		}
		if cur, ok := w.docs[doc.URI]; ok && cur.Owner == OwnerClient {
			continue
		}
		w.docs[doc.URI] = doc
		res.Loaded = append(res.Loaded, doc.URI)
	}
	return res, nil
}
