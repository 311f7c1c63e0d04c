package distro

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"quill/internal/config"
)

// Index maps file names such as "amsmath.sty" to absolute paths.
type Index struct {
	files map[string]string
	roots []string
}

// Resolve implements workspace.Resolver.
func (ix *Index) Resolve(name string) (string, bool) {
	if ix == nil {
		return "", false
	}
	p, ok := ix.files[name]
	return p, ok
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.files)
}

func (ix *Index) Roots() []string {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.roots)
}

// Options controls Load.
type Options struct {
	// Roots overrides kpsewhich discovery.
	Roots     []string
	Kpsewhich string
	// Cache may be nil.
	Cache *DiskCache
}

// LoadConfigured builds the index described by cfg. A cache directory that
// cannot be created only costs speed.
func LoadConfigured(ctx context.Context, cfg config.DistroConfig) (*Index, error) {
	cache, _ := OpenDiskCache(cfg.CacheDir)
	return Load(ctx, Options{Roots: cfg.Roots, Kpsewhich: cfg.Kpsewhich, Cache: cache})
}

// Load builds the index. Roots that do not exist are skipped. When only the
// cache write fails, the index is returned together with the error.
func Load(ctx context.Context, opts Options) (*Index, error) {
	roots := opts.Roots
	if len(roots) == 0 {
		found, err := DiscoverRoots(ctx, opts.Kpsewhich)
		if err != nil {
			return nil, err
		}
		roots = found
	}

	key, err := digestRoots(roots)
	if err != nil {
		return nil, err
	}
	var cached Payload
	if hit, err := opts.Cache.Get(key, &cached); err == nil && hit {
		return &Index{files: cached.Files, roots: cached.Roots}, nil
	}

	ix := &Index{files: make(map[string]string)}
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		ix.roots = append(ix.roots, root)
		if err := indexRoot(root, ix.files); err != nil {
			return nil, err
		}
	}
	if err := opts.Cache.Put(key, &Payload{Roots: ix.roots, Files: ix.files}); err != nil {
		// индекс готов, не удалось только сохранить кэш
		return ix, fmt.Errorf("distro: cache: %w", err)
	}
	return ix, nil
}

func indexRoot(root string, into map[string]string) error {
	f, err := os.Open(filepath.Join(root, "ls-R"))
	if errors.Is(err, fs.ErrNotExist) {
		return walkRoot(root, into)
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return ParseLsR(f, root, into)
}

// digestRoots hashes the root list together with every ls-R database, so
// that an updated distribution gets a fresh cache entry. Roots without
// ls-R contribute their directory modification time.
func digestRoots(roots []string) (Digest, error) {
	h := sha256.New()
	for _, root := range roots {
		h.Write([]byte(root))
		h.Write([]byte{0})
		data, err := os.ReadFile(filepath.Join(root, "ls-R")) // #nosec G304 -- distribution database
		switch {
		case err == nil:
			h.Write(data)
		case errors.Is(err, fs.ErrNotExist):
			if info, statErr := os.Stat(root); statErr == nil {
				h.Write([]byte(info.ModTime().UTC().String()))
			}
		default:
			return Digest{}, err
		}
		h.Write([]byte{0})
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}
