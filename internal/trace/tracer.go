package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Tracer receives events. Implementations must be safe for concurrent use:
// the language server emits from the request loop, the debounce timer and
// background chktex runs at the same time.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	// Close flushes and releases the output; stdio is never closed.
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written immediately
	ModeRing                          // kept in memory for crash dumps
	ModeBoth
)

var modeNames = map[StorageMode]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m StorageMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode converts a flag value into a StorageMode.
func ParseMode(s string) (StorageMode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for mode, name := range modeNames {
		if name == want {
			return mode, nil
		}
	}
	return ModeStream, fmt.Errorf("invalid trace mode: %q (expected: stream|ring|both)", s)
}

// Config describes the tracer built by New.
type Config struct {
	Level Level
	Mode  StorageMode
	// Format defaults to NDJSON for *.ndjson and *.jsonl paths, text otherwise.
	Format Format
	// Output wins over OutputPath. An empty path or "-" means stderr,
	// since stdout carries the LSP protocol.
	Output     io.Writer
	OutputPath string
	RingSize   int
}

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	switch cfg.Mode {
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeStream, ModeBoth:
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	stream := NewStreamTracer(w, cfg.Level, formatFor(cfg))
	if cfg.Mode == ModeStream {
		return stream, nil
	}
	return NewMultiTracer(cfg.Level, stream, NewRingTracer(cfg.RingSize, cfg.Level)), nil
}

func formatFor(cfg Config) Format {
	if cfg.Format != FormatAuto {
		return cfg.Format
	}
	switch filepath.Ext(cfg.OutputPath) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return FormatText
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath) // #nosec G304 -- path comes from a CLI flag
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

func isStdStream(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (f == os.Stderr || f == os.Stdout)
}
