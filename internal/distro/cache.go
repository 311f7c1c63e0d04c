package distro

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// увеличивать при изменении формата Payload
const cacheSchemaVersion uint16 = 1

// Digest identifies one combination of roots and ls-R contents.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Payload is the cached index.
type Payload struct {
	Schema uint16
	Roots  []string
	Files  map[string]string
}

// DiskCache stores index payloads keyed by Digest. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache uses dir, or $XDG_CACHE_HOME/quill (~/.cache/quill) when dir is empty.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "quill")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "distro", key.String()+".mp")
}

// Put writes payload atomically.
func (c *DiskCache) Put(key Digest, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = cacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), p)
}

// Get loads the payload for key. A missing entry or an entry written by
// another schema version is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *Payload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != cacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached index.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "distro"))
}
