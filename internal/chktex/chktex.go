// Package chktex runs the ChkTeX linter and converts its findings into diagnostics.
package chktex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"quill/internal/diag"
	"quill/internal/source"
)

// ErrNotInstalled is returned when the chktex executable cannot be found.
var ErrNotInstalled = errors.New("chktex: executable not found")

// Format is the -f template; one finding per line:
// line:column:length:kind:number:message.
const Format = `%l:%c:%d:%k:%n:%m\n`

// Runner invokes chktex. The zero value runs "chktex" without a timeout.
type Runner struct {
	Executable string
	Args       []string
	Timeout    time.Duration
}

func (r Runner) executable() string {
	if r.Executable == "" {
		return "chktex"
	}
	return r.Executable
}

// Command builds the command line without running it.
func (r Runner) Command() []string {
	args := []string{r.executable(), "-I0", "-f" + Format}
	return append(args, r.Args...)
}

// Run lints text in directory dir, so that a local .chktexrc applies.
// chktex signals findings through its exit status, so a non-zero exit with
// parseable output is not an error.
func (r Runner) Run(ctx context.Context, dir, text string) ([]diag.Diagnostic, error) {
	exe, err := exec.LookPath(r.executable())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, r.executable())
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := r.Command()
	// #nosec G204 -- executable and arguments come from the user's configuration
	cmd := exec.CommandContext(ctx, exe, argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("chktex: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return nil, fmt.Errorf("chktex: %w", runErr)
	}
	out := Parse(stdout.String(), source.NewFile("", []byte(text)))
	if runErr != nil && len(out) == 0 && stderr.Len() > 0 {
		return nil, fmt.Errorf("chktex: %s", strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Parse converts chktex output produced with Format into diagnostics.
// chktex counts columns in bytes; file, when non-nil, is the linted text and
// is used to turn them into UTF-16 positions. Malformed lines are skipped.
func Parse(output string, file *source.File) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if d, ok := parseLine(line, file); ok {
			out = append(out, d)
		}
	}
	return out
}

func parseLine(line string, file *source.File) (diag.Diagnostic, bool) {
	parts := strings.SplitN(line, ":", 6)
	if len(parts) != 6 {
		return diag.Diagnostic{}, false
	}
	lnum, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	length, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || lnum < 1 || col < 1 {
		return diag.Diagnostic{}, false
	}
	rng := findingRange(file, lnum-1, col-1, max(length, 0))
	d := diag.New(severity(parts[3]), diag.ChkFinding, rng, strings.TrimSpace(parts[5]))
	return d.WithExternalCode(strings.TrimSpace(parts[4])), true
}

// findingRange maps a byte column and length on line to a range, clamped
// to the line. Without the line text the byte values are used as is.
func findingRange(file *source.File, line, col, length int) source.Range {
	span, ok := file.LineSpan(line)
	if !ok {
		return source.Range{
			Start: source.Position{Line: line, Character: col},
			End:   source.Position{Line: line, Character: col + length},
		}
	}
	start := min(span.Start+source.ClampOffset(col), span.End)
	end := min(start+source.ClampOffset(length), span.End)
	return file.RangeOf(source.Span{Start: start, End: end})
}

func severity(kind string) diag.Severity {
	switch strings.TrimSpace(kind) {
	case "Error":
		return diag.SevError
	case "Warning":
		return diag.SevWarning
	default:
		return diag.SevInfo
	}
}
