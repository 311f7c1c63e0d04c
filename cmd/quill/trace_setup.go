package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/trace"
)

// setupTracing inspects trace-related flags and attaches a tracer to the
// command context. The returned cleanup stops the heartbeat and flushes.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	// --trace без уровня включает запросы
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelRequest
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	return func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	}, nil
}

// dumpTraceOnPanic writes the ring buffer to stderr before re-panicking,
// so the events leading up to a crash survive.
func dumpTraceOnPanic(cmd *cobra.Command) {
	r := recover()
	if r == nil {
		return
	}
	if ring := ringOf(trace.FromContext(cmd.Context())); ring != nil {
		fmt.Fprintln(os.Stderr, "--- trace (most recent events) ---")
		_ = ring.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}

func ringOf(t trace.Tracer) *trace.RingTracer {
	switch tr := t.(type) {
	case *trace.RingTracer:
		return tr
	case *trace.MultiTracer:
		if ring, ok := tr.Ring(); ok {
			return ring
		}
	}
	return nil
}
