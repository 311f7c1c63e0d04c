package main

import (
	"fmt"
	"io"

	"quill/internal/observ"
)

func printTimings(out io.Writer, report observ.Report) {
	if out == nil || len(report.Phases) == 0 {
		return
	}
	for _, p := range report.Phases {
		fmt.Fprintf(out, "%-10s %8.1f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(out, "  %s", p.Note)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%-10s %8.1f ms\n", "total", report.TotalMS)
}
