package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"quill/internal/chktex"
	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/diagnostics"
	"quill/internal/distro"
	"quill/internal/observ"
	"quill/internal/source"
	"quill/internal/trace"
	"quill/internal/workspace"
)

// LintFunc lints one document; dir is the document's directory.
type LintFunc func(ctx context.Context, cfg config.ChktexConfig, dir, text string) ([]diag.Diagnostic, error)

// CheckRequest configures a batch run.
type CheckRequest struct {
	Target Target
	// Jobs bounds parallel parsing and linting; <= 0 means GOMAXPROCS.
	Jobs int
	// Chktex runs the linter on every loaded LaTeX file.
	Chktex bool
	// Lint replaces the chktex executable, mainly in tests.
	Lint LintFunc
	// Distro resolves packages and classes through the TeX distribution
	// unless the config disables it.
	Distro   bool
	Progress ProgressSink
	Tracer   trace.Tracer
}

// CheckResult captures the diagnostics together with the state they were
// computed from.
type CheckResult struct {
	Config      *config.Config
	ConfigPath  string
	Workspace   *workspace.Workspace
	Diagnostics diag.Set
	// Failed maps unreadable files to their error.
	Failed   map[string]error
	Warnings []string
	Timings  observ.Report
}

// Check loads the target like an editor that has every file under the root
// open: the loaded files are client-owned, so chktex findings count, and
// documents pulled in by includes are server-owned.
func Check(ctx context.Context, req *CheckRequest) (CheckResult, error) {
	var result CheckResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing check request")
	}
	target := req.Target
	if target.Root == "" {
		return result, fmt.Errorf("missing check target")
	}
	tracer := req.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	span := trace.Begin(tracer, trace.ScopeServer, "pipeline.check", 0)
	defer span.End("")

	timer := observ.NewTimer()
	files := target.DisplayFiles()
	emitQueued(req.Progress, files)

	cfg, cfgPath, err := config.LoadForRoot(target.Root)
	if err != nil && !errors.Is(err, config.ErrInvalidPattern) {
		return result, err
	}
	result.Config, result.ConfigPath = cfg, cfgPath
	result.Warnings = append(result.Warnings, cfg.Warnings...)

	ws := workspace.New(cfg)
	ws.SetRoot(source.URIFromPath(target.Root))
	result.Workspace = ws

	if req.Distro && !cfg.Distro.Disabled {
		idx := timer.Begin("distro")
		ix, err := distro.LoadConfigured(ctx, cfg.Distro)
		if ix != nil {
			ws.SetDistro(ix)
		}
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("distro: %v", err))
		}
		timer.End(idx, fmt.Sprintf("%d files", ix.Len()))
	}

	emit(req.Progress, Event{Stage: StageLoad, Status: StatusWorking})
	idx := timer.Begin("load")
	loaded, err := ws.LoadDir(ctx, target.Root, workspace.LoadOptions{
		Jobs:  req.Jobs,
		Owner: workspace.OwnerClient,
		OnFile: func(path string, err error, elapsed time.Duration) {
			status := StatusWorking
			if err != nil {
				status = StatusError
			}
			emit(req.Progress, Event{File: target.Display(path), Stage: StageLoad, Status: status, Err: err, Elapsed: elapsed})
		},
	})
	timer.End(idx, fmt.Sprintf("%d files", len(loaded.Loaded)))
	if err != nil {
		emitStage(req.Progress, files, StageLoad, StatusError, err, 0)
		return result, fmt.Errorf("failed to load %s: %w", target.Root, err)
	}
	result.Failed = loaded.Failed
	if !target.IsDir {
		if loadErr, failed := loaded.Failed[target.Path]; failed {
			return result, fmt.Errorf("failed to load %s: %w", target.Path, loadErr)
		}
	}

	emit(req.Progress, Event{Stage: StageDiscover, Status: StatusWorking})
	timer.Measure("discover", func() string {
		return fmt.Sprintf("%d included", len(ws.Discover()))
	})

	manager := diagnostics.NewManager(diagnostics.ManagerOptions{Tracer: tracer})
	emit(req.Progress, Event{Stage: StageAnalyze, Status: StatusWorking})
	timer.Measure("analyze", func() string {
		n := 0
		for _, doc := range ws.Iter() {
			if !diagnostics.IsRelevant(doc) {
				continue
			}
			if doc.Owner == workspace.OwnerClient {
				emit(req.Progress, Event{File: target.Display(doc.URI.Path()), Stage: StageAnalyze, Status: StatusWorking})
			}
			manager.UpdateSyntax(ws, doc)
			n++
		}
		return fmt.Sprintf("%d documents", n)
	})

	if req.Chktex {
		emit(req.Progress, Event{Stage: StageChktex, Status: StatusWorking})
		idx := timer.Begin("chktex")
		err := lintAll(ctx, ws, manager, req)
		timer.End(idx, "")
		if err != nil {
			emitStage(req.Progress, nil, StageChktex, StatusError, err, 0)
			return result, err
		}
	}

	idx = timer.Begin("collect")
	set := manager.Get(ws)
	if !target.IsDir {
		if doc, ok := ws.Lookup(source.URIFromPath(target.Path)); ok {
			set.Retain(ws.Project(doc).Contains)
		}
	}
	timer.End(idx, fmt.Sprintf("%d diagnostics", set.Len()))
	result.Diagnostics = set
	result.Timings = timer.Report()

	for _, path := range target.Files {
		if _, failed := loaded.Failed[path]; failed {
			continue
		}
		emit(req.Progress, Event{File: target.Display(path), Stage: StageAnalyze, Status: StatusDone})
	}
	emit(req.Progress, Event{Stage: StageAnalyze, Status: StatusDone})
	return result, nil
}

// lintAll runs chktex over every client-owned LaTeX document. Results are
// stored only when every run succeeded.
func lintAll(ctx context.Context, ws *workspace.Workspace, manager *diagnostics.Manager, req *CheckRequest) error {
	lint := req.Lint
	if lint == nil {
		lint = runChktex
	}
	cfg := ws.Config().Chktex

	var docs []*workspace.Document
	for _, doc := range ws.Iter() {
		if doc.IsMarkup() && doc.Owner == workspace.OwnerClient {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	found := make([][]diag.Diagnostic, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(docs)))
	for i, doc := range docs {
		g.Go(func() error {
			path := doc.URI.Path()
			display := req.Target.Display(path)
			emit(req.Progress, Event{File: display, Stage: StageChktex, Status: StatusWorking})
			ds, err := lint(gctx, cfg, filepath.Dir(path), doc.Text())
			if err != nil {
				return fmt.Errorf("chktex %s: %w", display, err)
			}
			found[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, doc := range docs {
		manager.UpdateChktex(doc.URI, found[i])
	}
	return nil
}

func runChktex(ctx context.Context, cfg config.ChktexConfig, dir, text string) ([]diag.Diagnostic, error) {
	r := chktex.Runner{
		Executable: cfg.Executable,
		Args:       cfg.AdditionalArgs,
		Timeout:    cfg.Timeout(),
	}
	return r.Run(ctx, dir, text)
}
