// Package batch transforms every page of a project into module files and
// keeps them current while sources change.
package batch

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxlayout/internal/layout"
	"git.home.luguber.info/inful/mdxlayout/internal/loader"
	"git.home.luguber.info/inful/mdxlayout/internal/logfields"
	"git.home.luguber.info/inful/mdxlayout/internal/metrics"
	"git.home.luguber.info/inful/mdxlayout/internal/retry"
	"github.com/bmatcuk/doublestar/v4"
)

// OutputExt is appended to a page identifier (minus its own extension) to
// name the generated module.
const OutputExt = ".js"

// FileResult is the outcome for one page.
type FileResult struct {
	Source string
	ID     string
	Output string
	State  layout.State
	Err    error
}

// Report summarizes a batch run.
type Report struct {
	Files       []FileResult
	Wrapped     int
	PassThrough int
	Failed      int
	Duration    time.Duration
}

// Err joins the errors of all failed pages, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return stderrors.Join(errs...)
}

// Runner writes the generated module of each page below an output directory.
type Runner struct {
	loader      *loader.Loader
	outDir      string
	concurrency int
	retry       retry.Policy
	logger      *slog.Logger
	recorder    metrics.Recorder
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) { r.concurrency = n }
}

// WithRetryPolicy overrides the backoff used for failed module writes.
func WithRetryPolicy(p retry.Policy) RunnerOption {
	return func(r *Runner) { r.retry = p }
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithRecorder(rec metrics.Recorder) RunnerOption {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// NewRunner creates a runner writing into outDir. Concurrency defaults to
// the loader configuration's batch setting.
func NewRunner(l *loader.Loader, outDir string, opts ...RunnerOption) *Runner {
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	r := &Runner{
		loader:      l,
		outDir:      outDir,
		concurrency: l.Config().Batch.Concurrency,
		retry:       l.Config().Batch.RetryPolicy(),
		logger:      slog.Default(),
		recorder:    metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PagesRoot is the directory scanned by RunAll.
func (r *Runner) PagesRoot() string {
	return r.loader.Config().PagesRoot()
}

// LayoutRoot is the directory layouts are resolved from.
func (r *Runner) LayoutRoot() string {
	return r.loader.Config().LayoutRoot()
}

// IsPage reports whether name has one of the configured page extensions.
func (r *Runner) IsPage(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, allowed := range r.loader.Config().PageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Discover lists every page below the pages root in lexical order.
func (r *Runner) Discover() ([]string, error) {
	root := r.PagesRoot()
	exts := r.loader.Config().PageExtensions
	pattern := "**/*." + exts[0]
	if len(exts) > 1 {
		pattern = "**/*.{" + strings.Join(exts, ",") + "}"
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot list pages").
			WithContext("dir", root).
			Build()
	}
	slices.Sort(matches)
	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	return files, nil
}

// OutputPath maps a page source path to its generated module path.
func (r *Runner) OutputPath(source string) string {
	cfg := r.loader.Config()
	return r.outputFor(loader.ResourceID(cfg.Dir, cfg.PagesDir, source))
}

func (r *Runner) outputFor(id string) string {
	return filepath.Join(r.outDir, filepath.FromSlash(strings.TrimSuffix(id, path.Ext(id))+OutputExt))
}

// RunAll discovers and transforms every page.
func (r *Runner) RunAll(ctx context.Context) (Report, error) {
	files, err := r.Discover()
	if err != nil {
		return Report{}, err
	}
	return r.Run(ctx, files), nil
}

// Run transforms files and writes their modules. Failures are collected per
// file; one bad page does not stop the others.
func (r *Runner) Run(ctx context.Context, files []string) Report {
	start := time.Now()
	results := runOrdered(ctx, files, r.concurrency, r.transform)

	report := Report{Files: make([]FileResult, len(results))}
	for i, res := range results {
		fr := res.Value
		fr.Source = files[i]
		fr.Err = res.Err
		switch {
		case fr.Err != nil:
			report.Failed++
			r.logger.Error("Page transform failed", logfields.File(fr.Source), logfields.Error(fr.Err))
		case fr.State == layout.StateWrapped:
			report.Wrapped++
		default:
			report.PassThrough++
		}
		report.Files[i] = fr
	}
	report.Duration = time.Since(start)
	r.recorder.ObserveBatchDuration(report.Duration)
	r.logger.Info("Batch complete",
		logfields.Count(len(files)),
		slog.Int("wrapped", report.Wrapped),
		slog.Int("pass_through", report.PassThrough),
		slog.Int("failed", report.Failed),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	return report
}

func (r *Runner) transform(ctx context.Context, source string) (FileResult, error) {
	res, err := r.loader.TransformFile(ctx, source)
	if err != nil {
		return FileResult{}, err
	}
	out := r.outputFor(res.ID)
	err = r.retry.Do(ctx, func() error {
		if err := writeFile(out, res.Output); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "cannot write module").
				WithContext("file", out).
				Retryable().
				Build()
		}
		return nil
	})
	if err != nil {
		return FileResult{ID: res.ID}, err
	}
	return FileResult{ID: res.ID, Output: out, State: res.State}, nil
}

// Remove deletes the generated module for a page source that no longer exists.
func (r *Runner) Remove(source string) error {
	out := r.OutputPath(source)
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot remove module").
			WithContext("file", out).
			Build()
	}
	return nil
}

// writeFile replaces dst atomically so watchers never see a partial module.
func writeFile(dst, content string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".mdxlayout-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
