package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quill/internal/diagfmt"
	"quill/internal/pipeline"
	"quill/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <dir|file>",
	Short: "Check a LaTeX/BibTeX project and print its diagnostics",
	Long: `Check loads every .tex and .bib file under the target directory (or the
directory containing the target file), resolves includes and reports the same
diagnostics the language server would publish. For a file target only the
diagnostics of its project are printed. The exit status is 1 when any
diagnostic is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Bool("chktex", false, "run chktex on every LaTeX file")
	checkCmd.Flags().Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().Bool("fullpath", false, "print absolute paths")
	checkCmd.Flags().Bool("related", true, "include related locations")
	checkCmd.Flags().Bool("no-distro", false, "skip TeX distribution discovery")
	checkCmd.Flags().Int("context", 0, "source lines of context around each excerpt")
}

type checkOptions struct {
	format    string
	chktex    bool
	jobs      int
	ui        uiMode
	fullPath  bool
	related   bool
	noDistro  bool
	context   int
	quiet     bool
	timings   bool
	maxDiags  int
	colorized bool
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	flags := cmd.Flags()
	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "pretty", "json", "short":
	default:
		return opts, fmt.Errorf("unknown format %q (expected pretty|json|short)", opts.format)
	}
	if opts.chktex, err = flags.GetBool("chktex"); err != nil {
		return opts, fmt.Errorf("failed to get chktex flag: %w", err)
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if opts.related, err = flags.GetBool("related"); err != nil {
		return opts, fmt.Errorf("failed to get related flag: %w", err)
	}
	if opts.noDistro, err = flags.GetBool("no-distro"); err != nil {
		return opts, fmt.Errorf("failed to get no-distro flag: %w", err)
	}
	if opts.context, err = flags.GetInt("context"); err != nil {
		return opts, fmt.Errorf("failed to get context flag: %w", err)
	}

	root := cmd.Root().PersistentFlags()
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.maxDiags, err = root.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	opts.colorized = !color.NoColor
	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	opts, err := readCheckOptions(cmd)
	if err != nil {
		return err
	}
	target, err := pipeline.ResolveTarget(args[0])
	if err != nil {
		return err
	}

	req := &pipeline.CheckRequest{
		Target: target,
		Jobs:   opts.jobs,
		Chktex: opts.chktex,
		Distro: !opts.noDistro,
		Tracer: trace.FromContext(cmd.Context()),
	}
	// json на stdout не смешиваем с TUI
	useUI := opts.format != "json" && !opts.quiet && shouldUseTUI(opts.ui)

	var res pipeline.CheckResult
	if useUI {
		res, err = runCheckWithUI(cmd.Context(), "quill check", target.DisplayFiles(), req)
	} else {
		res, err = pipeline.Check(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if !opts.quiet {
		for _, w := range res.Warnings {
			fmt.Fprintf(stderr, "warning: %s\n", w)
		}
		for path, ferr := range res.Failed {
			fmt.Fprintf(stderr, "warning: %s: %v\n", target.Display(path), ferr)
		}
	}

	if err := writeDiagnostics(cmd.OutOrStdout(), res, target, opts); err != nil {
		return err
	}

	if opts.format != "json" {
		if opts.timings {
			printTimings(stderr, res.Timings)
		}
		if !opts.quiet {
			fmt.Fprintln(stderr, diagfmt.Summary(res.Diagnostics))
		}
	}

	if res.Diagnostics.HasErrors() {
		return exitError{code: 1}
	}
	return checkCanceled(cmd.Context())
}

func writeDiagnostics(out io.Writer, res pipeline.CheckResult, target pipeline.Target, opts checkOptions) error {
	pathMode := diagfmt.PathModeAuto
	if opts.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	jsonOpts := diagfmt.JSONOpts{
		PathMode:       pathMode,
		BaseDir:        target.Root,
		IncludeRelated: opts.related,
		Max:            opts.maxDiags,
	}
	switch opts.format {
	case "json":
		output := diagfmt.BuildDiagnosticsOutput(res.Diagnostics, jsonOpts)
		if opts.timings {
			report := res.Timings
			output.Timings = &report
		}
		return diagfmt.JSON(out, output)
	case "short":
		return diagfmt.Short(out, res.Diagnostics, jsonOpts)
	default:
		return diagfmt.Pretty(out, res.Diagnostics, res.Workspace, diagfmt.PrettyOpts{
			Color:       opts.colorized,
			PathMode:    pathMode,
			BaseDir:     target.Root,
			Context:     opts.context,
			ShowRelated: opts.related,
			Max:         opts.maxDiags,
		})
	}
}

func checkCanceled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "interrupted")
		return exitError{code: 130}
	}
	return nil
}
