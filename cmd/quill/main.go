package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"quill/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "LaTeX and BibTeX diagnostics engine",
	Long: `quill checks LaTeX and BibTeX projects for syntax errors, undefined
references, unused citations and build log problems. It runs as a language
server (quill lsp) or as a one-shot checker (quill check).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRun,
}

// cleanups are registered by setupRun and run once after the command
// returns, including on error where PersistentPostRun is skipped.
var cleanups []func()

// exitError carries a process exit code for results that were already
// reported, e.g. diagnostics with errors.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show (0 = all)")

	// Трассировка
	rootCmd.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|request|document|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring tracer")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 = off)")

	// Профилирование
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	runCleanups()

	if err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupRun(cmd *cobra.Command, _ []string) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := resolveColor(colorFlag, isTerminal(os.Stdout))
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	traceCleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, traceCleanup)

	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, profCleanup)
	return nil
}

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func resolveColor(value string, tty bool) (bool, error) {
	switch value {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return tty, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- descriptor fits in int
}
