// Package watch reports on-disk changes under the workspace root in
// debounced batches.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Op uint8

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one file event.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler receives a batch of changes, at most one per path, in arrival
// order. It is always called from the same goroutine.
type Handler func(changes []Change)

type Options struct {
	// Debounce is the quiet period before a batch is delivered.
	Debounce time.Duration
	// Extensions limits reported files; empty reports everything.
	Extensions []string
	// Ignore holds directory or file base names and globs to skip.
	Ignore     []string
	BufferSize int
}

// DefaultOptions watches sources, bibliographies and build logs.
func DefaultOptions() Options {
	return Options{
		Debounce:   200 * time.Millisecond,
		Extensions: []string{".tex", ".sty", ".cls", ".bib", ".log"},
		Ignore:     []string{".git", ".svn", "node_modules", "*.swp", "*~", "_minted-*"},
		BufferSize: 1024,
	}
}

type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	handler  Handler
	opts     Options
	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.Mutex
	watching bool
	errs     []error
}

func New(root string, handler Handler, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultOptions().Debounce
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions().BufferSize
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    root,
		fsw:     fsw,
		handler: handler,
		opts:    opts,
		changes: make(chan Change, opts.BufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Start registers the root recursively and begins delivering batches until
// ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop ends watching and waits for the pending batch to be delivered.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsw.Close()
		w.wg.Wait()
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// Errors returns the watcher errors seen so far and clears them.
func (w *Watcher) Errors() []error {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.errs
	w.errs = nil
	return out
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	if w.matchIgnore(filepath.Base(path)) {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	// файлы внутри игнорируемых каталогов
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.matchIgnore(part) {
			return true
		}
	}
	return false
}

func (w *Watcher) matchIgnore(name string) bool {
	for _, pattern := range w.opts.Ignore {
		if name == pattern {
			return true
		}
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) interesting(path string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	return slices.Contains(w.opts.Extensions, strings.ToLower(filepath.Ext(path)))
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(ev.Name)
					continue
				}
			}
			if !w.interesting(ev.Name) {
				continue
			}
			select {
			case w.changes <- Change{Path: ev.Name, Op: convertOp(ev.Op), Time: time.Now()}:
			default:
				// буфер полон; следующее событие по этому файлу всё равно придёт
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.errs = append(w.errs, err)
			w.mu.Unlock()
		}
	}
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return OpWrite
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()
	var (
		batch  []Change
		timer  *time.Timer
		timerC <-chan time.Time
	)
	flush := func() {
		if len(batch) > 0 && w.handler != nil {
			w.handler(Dedup(batch))
		}
		batch = batch[:0]
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case c := <-w.changes:
			batch = append(batch, c)
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// Dedup keeps the latest change per path at the position of its first occurrence.
func Dedup(changes []Change) []Change {
	seen := make(map[string]int, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if i, ok := seen[c.Path]; ok {
			out[i] = c
			continue
		}
		seen[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
