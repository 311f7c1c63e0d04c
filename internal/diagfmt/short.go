package diagfmt

import (
	"io"
	"strings"

	"quill/internal/diag"
)

// Short writes one line per diagnostic:
//
//	<severity> <code> <path>:<line>:<col> <message>
func Short(w io.Writer, set diag.Set, opts JSONOpts) error {
	out := diag.FormatShort(set, opts.BaseDir, opts.IncludeRelated)
	if out == "" {
		return nil
	}
	if opts.Max > 0 {
		lines := strings.SplitN(out, "\n", opts.Max+1)
		if len(lines) > opts.Max {
			out = strings.Join(lines[:opts.Max], "\n")
		}
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
