// Package loader is the per-file transform entry point. It parses a page's
// front matter, computes the page identifier and hands the page to the
// layout resolver.
package loader

import (
	"context"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/mdxlayout/internal/config"
	"git.home.luguber.info/inful/mdxlayout/internal/extend"
	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxlayout/internal/frontmatter"
	"git.home.luguber.info/inful/mdxlayout/internal/layout"
	"git.home.luguber.info/inful/mdxlayout/internal/logfields"
	"git.home.luguber.info/inful/mdxlayout/internal/metrics"
)

// Result is a transformed page.
type Result struct {
	layout.Result
	// ID is the resolved page identifier.
	ID       string
	Language frontmatter.Language
}

// Loader transforms page sources for one project configuration.
// It is safe for concurrent use.
type Loader struct {
	cfg      config.Config
	resolver *layout.Resolver
	matcher  layout.Matcher
	extender extend.Extender
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Loader.
type Option func(*Loader)

// WithMatcher replaces the filesystem glob used for layout lookup.
func WithMatcher(m layout.Matcher) Option {
	return func(l *Loader) { l.matcher = m }
}

// WithExtender replaces the configured front matter hooks. The extender
// runs as given, without phase filtering.
func WithExtender(e extend.Extender) Option {
	return func(l *Loader) { l.extender = e }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(l *Loader) {
		if r != nil {
			l.recorder = r
		}
	}
}

// New validates cfg and builds a loader from it.
func New(cfg config.Config, opts ...Option) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Loader{
		cfg:      cfg,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.extender == nil && len(cfg.ExtendFrontMatter.Hooks) > 0 {
		ext, err := l.hooksFromConfig(cfg.ExtendFrontMatter)
		if err != nil {
			return nil, err
		}
		l.extender = ext
	}

	l.resolver = layout.NewResolver(layout.Options{
		Dir:                cfg.Dir,
		LayoutPath:         cfg.LayoutPath,
		DefaultLayout:      cfg.DefaultLayout,
		Extensions:         cfg.PageExtensions,
		ImportResolvedFile: cfg.ImportResolvedFile,
	}, l.matcher, l.extender).
		WithLogger(l.logger).
		WithRecorder(l.recorder)

	return l, nil
}

func (l *Loader) hooksFromConfig(ec config.ExtendConfig) (extend.Extender, error) {
	phase, err := extend.ParsePhase(ec.Phase)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid extend_front_matter phase").Fatal().Build()
	}
	chain, err := extend.Build(ec.Hooks)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid extend_front_matter hooks").Fatal().Build()
	}
	for _, name := range chain.Names() {
		l.logger.Debug("Front matter hook enabled", logfields.Hook(name), logfields.Phase(string(phase)))
	}
	return extend.ForPhase(phase, chain), nil
}

// Config returns the configuration the loader was built with.
func (l *Loader) Config() config.Config {
	return l.cfg
}

// Transform turns a page source into module text. resourcePath is the
// page's path on disk; it is used for the identifier only and never read.
func (l *Loader) Transform(ctx context.Context, resourcePath string, src []byte) (string, error) {
	res, err := l.Process(ctx, resourcePath, src)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// TransformFile reads path and transforms it.
func (l *Loader) TransformFile(ctx context.Context, path string) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		fsErr := errors.WrapError(err, errors.CategoryFileSystem, "cannot read page").
			WithContext("file", path).
			Build()
		l.recorder.IncTransformError(string(errors.CategoryFileSystem))
		return Result{}, fsErr
	}
	return l.Process(ctx, path, src)
}

// Process is Transform with the full resolution details.
func (l *Loader) Process(ctx context.Context, resourcePath string, src []byte) (Result, error) {
	start := time.Now()
	res, err := l.process(ctx, resourcePath, src)
	elapsed := time.Since(start)

	if err != nil {
		category := errors.GetCategory(err)
		l.recorder.IncTransformResult(metrics.ResultFailed)
		l.recorder.IncTransformError(string(category))
		l.recorder.ObserveTransformDuration(metrics.ResultFailed, elapsed)
		l.logger.Debug("Transform failed",
			logfields.File(resourcePath),
			logfields.Error(err),
			slog.String("category", string(category)))
		return Result{}, err
	}

	label := metrics.ResultWrapped
	if res.State == layout.StatePassThrough {
		label = metrics.ResultPassThrough
	}
	l.recorder.IncTransformResult(label)
	l.recorder.ObserveTransformDuration(label, elapsed)
	l.logger.Debug("Transformed page",
		logfields.Resource(res.ID),
		logfields.State(string(res.State)),
		logfields.Layout(res.LayoutName),
		logfields.LayoutFile(res.LayoutFile),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return res, nil
}

func (l *Loader) process(ctx context.Context, resourcePath string, src []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	doc, err := frontmatter.Parse(src)
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return Result{}, classified.WithContext("file", resourcePath)
		}
		return Result{}, err
	}

	id := ResourceID(l.cfg.Dir, l.cfg.PagesDir, resourcePath)
	resolved, err := l.resolver.Resolve(ctx, layout.Request{
		FrontMatter:  doc.Data,
		Content:      doc.Content,
		ResourcePath: id,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Result: resolved, ID: id, Language: doc.Language}, nil
}
