// Package prof wires runtime/pprof and runtime/trace to the CLI's profiling
// flags.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options names the output files; empty paths disable the profiler.
type Options struct {
	CPUProfile   string
	MemProfile   string
	RuntimeTrace string
}

func (o Options) Enabled() bool {
	return o.CPUProfile != "" || o.MemProfile != "" || o.RuntimeTrace != ""
}

// Session is a running set of profilers.
type Session struct {
	opts      Options
	cpuFile   *os.File
	traceFile *os.File
	stopped   bool
}

// Start enables the requested profilers. On error nothing is left running.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile) // #nosec G304 -- path comes from a CLI flag
		if err != nil {
			return nil, fmt.Errorf("failed to create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if opts.RuntimeTrace != "" {
		f, err := os.Create(opts.RuntimeTrace) // #nosec G304 -- path comes from a CLI flag
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("failed to create runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("failed to start runtime trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

// Stop ends every profiler and writes the heap profile. Calling it again
// is a no-op.
func (s *Session) Stop() error {
	if s == nil || s.stopped {
		return nil
	}
	s.stopped = true
	var errs []error
	if s.traceFile != nil {
		trace.Stop()
		errs = append(errs, s.traceFile.Close())
		s.traceFile = nil
	}
	errs = append(errs, s.stopCPU())
	if s.opts.MemProfile != "" {
		errs = append(errs, writeHeap(s.opts.MemProfile))
	}
	return errors.Join(errs...)
}

func (s *Session) stopCPU() error {
	if s.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := s.cpuFile.Close()
	s.cpuFile = nil
	return err
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path) // #nosec G304 -- path comes from a CLI flag
	if err != nil {
		return fmt.Errorf("failed to create heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
