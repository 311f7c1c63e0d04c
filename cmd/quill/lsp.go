package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/lsp"
	"quill/internal/trace"
	"quill/internal/version"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the quill language server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

func init() {
	lspCmd.Flags().Int("jobs", 0, "parallel parsing while loading the workspace (0 = GOMAXPROCS)")
	lspCmd.Flags().Bool("no-watch", false, "do not watch the workspace for changes on disk")
	lspCmd.Flags().Duration("debounce", 0, "override the configured diagnostics delay")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	defer dumpTraceOnPanic(cmd)

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noWatch, err := cmd.Flags().GetBool("no-watch")
	if err != nil {
		return fmt.Errorf("failed to get no-watch flag: %w", err)
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce: debounce,
		Watch:    !noWatch,
		Jobs:     jobs,
		Tracer:   trace.FromContext(cmd.Context()),
		Version:  version.Version,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
