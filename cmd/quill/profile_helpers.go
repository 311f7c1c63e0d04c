package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/prof"
)

// setupProfiling starts the profilers named by the persistent flags. The
// cleanup writes the heap profile and is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	var opts prof.Options
	var err error
	if opts.CPUProfile, err = root.PersistentFlags().GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.MemProfile, err = root.PersistentFlags().GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.RuntimeTrace, err = root.PersistentFlags().GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return func() {}, nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profiling: %v\n", err)
		}
	}, nil
}
