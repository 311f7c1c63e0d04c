package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quill/internal/diag"
	"quill/internal/source"
)

type palette struct {
	err, warn, info, hint *color.Color
	code, path, note      *color.Color
	gutter                *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgBlue, color.Bold),
		hint:   mk(color.FgCyan),
		code:   mk(color.Faint),
		path:   mk(color.Bold),
		note:   mk(color.FgGreen),
		gutter: mk(color.FgBlue),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	case diag.SevInfo:
		return p.info
	default:
		return p.hint
	}
}

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строку исходника с подчёркиванием ^~~~ по Range и связанные места.
// files may be nil, in which case excerpts are omitted.
func Pretty(w io.Writer, set diag.Set, files Files, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}
	entries := ordered(set, opts.PathMode, opts.BaseDir)
	if opts.Max > 0 && len(entries) > opts.Max {
		entries = entries[:opts.Max]
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		d := e.diag
		sev := p.severity(d.Severity)
		fmt.Fprintf(&b, "%s: %s %s: %s\n",
			p.path.Sprintf("%s:%d:%d", e.path, d.Range.Start.Line+1, d.Range.Start.Character+1),
			sev.Sprint(strings.ToUpper(diag.SeverityLabel(d.Severity))),
			p.code.Sprint(d.CodeID()),
			d.Message)
		if files != nil {
			writeExcerpt(&b, files.File(e.uri), d.Range, opts, p, sev)
		}
		if !opts.ShowRelated {
			continue
		}
		for _, rel := range d.Related {
			fmt.Fprintf(&b, "  %s %s:%d:%d: %s\n",
				p.note.Sprint("note:"),
				formatPath(rel.URI, opts.PathMode, opts.BaseDir),
				rel.Range.Start.Line+1, rel.Range.Start.Character+1,
				rel.Message)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeExcerpt(b *strings.Builder, file *source.File, rng source.Range, opts PrettyOpts, p palette, mark *color.Color) {
	if file == nil {
		return
	}
	line := rng.Start.Line
	span, ok := file.LineSpan(line)
	if !ok {
		return
	}
	first := max(0, line-max(0, opts.Context))
	last := min(file.LineCount()-1, line+max(0, opts.Context))
	gutter := len(strconv.Itoa(last + 1))

	for n := first; n <= last; n++ {
		sp, ok := file.LineSpan(n)
		if !ok {
			break
		}
		fmt.Fprintf(b, "%s %s\n", p.gutter.Sprintf("%*d |", gutter, n+1), expandTabs(file.Slice(sp), opts.TabWidth))
		if n != line {
			continue
		}
		start := file.OffsetAt(rng.Start)
		end := file.OffsetAt(rng.End)
		if rng.End.Line > line || end > span.End {
			end = span.End
		}
		end = max(end, start)
		text := file.Slice(span)
		prefix := text[:start-span.Start]
		marked := text[:end-span.Start]

		pad := displayWidth(prefix, opts.TabWidth)
		width := max(1, displayWidth(marked, opts.TabWidth)-pad)
		carets := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(b, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutter, ""), strings.Repeat(" ", pad), mark.Sprint(carets))
	}
}

// expandTabs replaces tabs with spaces up to the next tab stop, measuring
// columns in terminal cells.
func expandTabs(s string, tab int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tab - col%tab
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

func displayWidth(s string, tab int) int {
	return runewidth.StringWidth(expandTabs(s, tab))
}
