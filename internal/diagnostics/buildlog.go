package diagnostics

import (
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"

	"quill/internal/buildlog"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/workspace"
)

// BuildLog is the raw text of one engine log.
type BuildLog struct {
	Path string
	// Dir is the directory the engine ran in; file names in the log are
	// relative to it.
	Dir  string
	Text string
}

// BuildLogSource finds the build log produced by compiling doc.
type BuildLogSource interface {
	Find(ws *workspace.Workspace, doc *workspace.Document) (BuildLog, bool)
}

// FileBuildLogSource looks for <stem>.log next to the document and in the
// configured log and aux directories.
type FileBuildLogSource struct{}

func (FileBuildLogSource) Find(ws *workspace.Workspace, doc *workspace.Document) (BuildLog, bool) {
	if !doc.IsMarkup() {
		return BuildLog{}, false
	}
	docPath := doc.URI.Path()
	if docPath == "" {
		return BuildLog{}, false
	}
	docDir := filepath.Dir(docPath)
	base := docDir
	if root := ws.Config().RootDirectory; root != "" {
		base = root
	}
	name := doc.URI.Stem() + ".log"

	var dirs []string
	for _, d := range []string{ws.Config().Build.LogDirectory, ws.Config().Build.AuxDirectory} {
		if d == "" {
			continue
		}
		if !filepath.IsAbs(d) {
			d = filepath.Join(base, d)
		}
		dirs = append(dirs, d)
	}
	dirs = append(dirs, docDir)

	for _, dir := range dirs {
		p := filepath.Join(dir, name)
		// #nosec G304 -- log path derived from a workspace document
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		return BuildLog{Path: p, Dir: base, Text: string(data)}, true
	}
	return BuildLog{}, false
}

// collectBuildLog parses doc's build log and groups its entries by the
// document they refer to. Entries about unknown files, or without a file,
// are attached to doc itself.
func collectBuildLog(ws *workspace.Workspace, doc *workspace.Document, logs BuildLogSource) diag.Set {
	log, ok := logs.Find(ws, doc)
	if !ok {
		return nil
	}
	out := make(diag.Set)
	rep := diag.NewDedupReporter(diag.SetReporter{Set: out})
	for _, e := range buildlog.Parse(log.Text) {
		target := resolveLogFile(ws, doc, log.Dir, e.File)
		rng := logRange(ws, target, e.Line)
		code, sev := diag.LogError, diag.SevError
		if e.Level == buildlog.LevelWarning {
			code, sev = diag.LogWarning, diag.SevWarning
		}
		diag.NewReportBuilder(rep, target, sev, code, rng, e.Message).Emit()
	}
	return out
}

func resolveLogFile(ws *workspace.Workspace, doc *workspace.Document, dir, file string) source.URI {
	file = strings.TrimSpace(file)
	if file == "" {
		return doc.URI
	}
	p := filepath.FromSlash(file)
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	uri := source.URIFromPath(p)
	if _, ok := ws.Lookup(uri); ok {
		return uri
	}
	return doc.URI
}

// logRange covers the text of the reported line when the document is
// loaded, and is an empty range at the line start otherwise.
func logRange(ws *workspace.Workspace, uri source.URI, line int) source.Range {
	if line < 1 {
		return source.Range{}
	}
	pos := source.Position{Line: line - 1}
	target, ok := ws.Lookup(uri)
	if !ok {
		return source.Range{Start: pos, End: pos}
	}
	span, ok := target.File.LineSpan(line - 1)
	if !ok {
		return source.Range{Start: pos, End: pos}
	}
	text := target.File.Slice(span)
	trimmed := strings.TrimLeft(text, " \t")
	if indent, err := safecast.Conv[uint32](len(text) - len(trimmed)); err == nil {
		span.Start += indent
	}
	return target.Range(span)
}
