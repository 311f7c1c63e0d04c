package diagfmt

import (
	"encoding/json"
	"io"

	"quill/internal/diag"
	"quill/internal/observ"
	"quill/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON; строки и
// колонки 1-based, колонки в UTF-16 единицах.
type LocationJSON struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// RelatedJSON представляет связанное место для JSON
type RelatedJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Source   string        `json:"source"`
	Message  string        `json:"message"`
	Location LocationJSON  `json:"location"`
	Related  []RelatedJSON `json:"related,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	// Omitted counts diagnostics cut by JSONOpts.Max.
	Omitted int            `json:"omitted,omitempty"`
	Timings *observ.Report `json:"timings,omitempty"`
}

func makeLocation(uri source.URI, rng source.Range, opts JSONOpts) LocationJSON {
	return LocationJSON{
		File:      formatPath(uri, opts.PathMode, opts.BaseDir),
		StartLine: rng.Start.Line + 1,
		StartCol:  rng.Start.Character + 1,
		EndLine:   rng.End.Line + 1,
		EndCol:    rng.End.Character + 1,
	}
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации,
// чтобы вызывающий мог дополнить её (например, таймингами).
func BuildDiagnosticsOutput(set diag.Set, opts JSONOpts) DiagnosticsOutput {
	entries := ordered(set, opts.PathMode, opts.BaseDir)
	omitted := 0
	if opts.Max > 0 && len(entries) > opts.Max {
		omitted = len(entries) - opts.Max
		entries = entries[:opts.Max]
	}

	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, len(entries)),
		Omitted:     omitted,
	}
	for _, e := range entries {
		d := e.diag
		dj := DiagnosticJSON{
			Severity: diag.SeverityLabel(d.Severity),
			Code:     d.CodeID(),
			Source:   d.Origin().String(),
			Message:  d.Message,
			Location: makeLocation(e.uri, d.Range, opts),
		}
		if opts.IncludeRelated && len(d.Related) > 0 {
			dj.Related = make([]RelatedJSON, len(d.Related))
			for i, rel := range d.Related {
				dj.Related[i] = RelatedJSON{
					Message:  rel.Message,
					Location: makeLocation(rel.URI, rel.Range, opts),
				}
			}
		}
		for _, tag := range d.Tags {
			dj.Tags = append(dj.Tags, tagName(tag))
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON encodes output with the indentation used by every JSON command.
func JSON(w io.Writer, output DiagnosticsOutput) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
