package layout

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"git.home.luguber.info/inful/mdxlayout/internal/extend"
	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxlayout/internal/literal"
	"git.home.luguber.info/inful/mdxlayout/internal/logfields"
	"git.home.luguber.info/inful/mdxlayout/internal/metrics"
)

const (
	// FieldLayout is the front matter key naming a page's layout.
	FieldLayout = "layout"
	// FieldResourcePath is the reserved key carrying the page identifier.
	// It always overrides user metadata of the same name.
	FieldResourcePath = "__resourcePath"
	// DefaultLayoutName is used when default layouts are enabled and the
	// page names none.
	DefaultLayoutName = "index"
)

// State is the terminal state of a resolution.
type State string

const (
	StatePassThrough State = "pass_through"
	StateWrapped     State = "wrapped"
)

// Options is the immutable layout configuration for a project.
type Options struct {
	// Dir is the project root. Relative LayoutPath values resolve against it.
	Dir string
	// LayoutPath is the layout directory, relative to Dir or absolute.
	LayoutPath string
	// DefaultLayout wraps pages without a layout field in DefaultLayoutName.
	DefaultLayout bool
	// Extensions lists permitted layout file extensions without dots.
	Extensions []string
	// ImportResolvedFile imports the matched file (with extension) instead
	// of the extensionless stem.
	ImportResolvedFile bool
}

// Request is a single page to resolve.
type Request struct {
	FrontMatter  map[string]any
	Content      string
	ResourcePath string
}

// Result describes the generated module and how it was reached.
type Result struct {
	Output     string
	State      State
	LayoutName string
	LayoutFile string
	Pattern    string
	// Metadata is the merged object passed to the layout. Nil for pass-through.
	Metadata map[string]any
}

// Resolver decides whether a page is wrapped in a layout and generates the
// wrapping module. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	opts     Options
	matcher  Matcher
	extender extend.Extender
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewResolver creates a resolver. A nil matcher uses GlobMatcher; a nil
// extender contributes no metadata.
func NewResolver(opts Options, matcher Matcher, extender extend.Extender) *Resolver {
	if matcher == nil {
		matcher = GlobMatcher{}
	}
	opts.Extensions = slices.Clone(opts.Extensions)
	return &Resolver{
		opts:     opts,
		matcher:  matcher,
		extender: extender,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
}

// WithLogger sets the logger used for lookup diagnostics.
func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithRecorder sets the metrics recorder for layout lookups.
func (r *Resolver) WithRecorder(recorder metrics.Recorder) *Resolver {
	if recorder != nil {
		r.recorder = recorder
	}
	return r
}

// Resolve runs the layout decision for req.
//
// Pages without a layout (and with default layouts off) pass through
// unchanged. Otherwise the extension hook runs, the layout file is located
// among the permitted extensions, and a module importing the layout and
// calling it with the merged metadata is generated. req.FrontMatter is not
// modified.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	name, ok, invalid := layoutName(req.FrontMatter)
	if invalid != nil {
		return Result{}, invalid.WithContext("resource", req.ResourcePath)
	}
	frontMatter := maps.Clone(req.FrontMatter)
	if !ok {
		if !r.opts.DefaultLayout {
			return Result{Output: req.Content, State: StatePassThrough}, nil
		}
		name = DefaultLayoutName
		if frontMatter == nil {
			frontMatter = make(map[string]any, 1)
		}
		frontMatter[FieldLayout] = name
	}

	stem, err := r.stem(name)
	if err != nil {
		return Result{}, err
	}
	pattern := r.pattern(stem)

	extended, err := r.extend(ctx, req)
	if err != nil {
		return Result{}, err
	}

	layoutFile, err := r.locate(ctx, req.ResourcePath, name, pattern)
	if err != nil {
		return Result{}, err
	}

	metadata := Merge(frontMatter, extended, req.ResourcePath)
	importPath := stem
	if r.opts.ImportResolvedFile {
		importPath = layoutFile
	}
	output, err := Generate(filepath.ToSlash(importPath), metadata, req.Content)
	if err != nil {
		return Result{}, errors.WrapError(err, errors.CategoryGenerate, "cannot serialize front matter").
			WithContext("resource", req.ResourcePath).
			Build()
	}

	return Result{
		Output:     output,
		State:      StateWrapped,
		LayoutName: name,
		LayoutFile: layoutFile,
		Pattern:    pattern,
		Metadata:   metadata,
	}, nil
}

// layoutName reads the layout field. Absent, null, false, zero and blank
// values mean no layout; any other non-string is rejected.
func layoutName(fm map[string]any) (string, bool, *errors.ClassifiedError) {
	raw, present := fm[FieldLayout]
	if !present || raw == nil {
		return "", false, nil
	}
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false, nil
		}
		return v, true, nil
	case bool:
		if !v {
			return "", false, nil
		}
	case int, int64, uint64, float64:
		if reflect.ValueOf(v).IsZero() {
			return "", false, nil
		}
	}
	return "", false, errors.ValidationError(fmt.Sprintf("front matter field %q must be a string, got %T", FieldLayout, raw)).
		WithContext("layout", fmt.Sprint(raw)).
		Build()
}

// stem is the absolute layout path without extension.
func (r *Resolver) stem(name string) (string, error) {
	base := r.opts.LayoutPath
	if !filepath.IsAbs(base) {
		base = filepath.Join(r.opts.Dir, base)
	}
	stem, err := filepath.Abs(filepath.Join(base, filepath.FromSlash(name)))
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve layout directory").
			WithContext("layout", name).
			Build()
	}
	return stem, nil
}

// pattern accepts stem followed by any permitted extension.
func (r *Resolver) pattern(stem string) string {
	exts := r.opts.Extensions
	if len(exts) == 1 {
		return escapeMeta(stem) + "." + exts[0]
	}
	return escapeMeta(stem) + ".{" + strings.Join(exts, ",") + "}"
}

func (r *Resolver) extend(ctx context.Context, req Request) (map[string]any, error) {
	if r.extender == nil {
		return nil, nil
	}
	fields, err := r.extender.Extend(ctx, extend.Input{
		Content:      req.Content,
		Phase:        extend.PhaseLoader,
		ResourcePath: req.ResourcePath,
	})
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryHook, "extend front matter failed").
			WithContext("resource", req.ResourcePath).
			Build()
	}
	return fields, nil
}

// locate returns the first match for pattern in lexicographic order.
func (r *Resolver) locate(ctx context.Context, resource, name, pattern string) (string, error) {
	matches, err := r.matcher.Match(ctx, pattern)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "layout lookup failed").
			WithContext("resource", resource).
			WithContext("layout", name).
			WithContext("pattern", pattern).
			Build()
	}
	r.recorder.IncLayoutLookup(len(matches) > 0)
	if len(matches) == 0 {
		r.logger.Debug("No layout file matched",
			logfields.Resource(resource), logfields.Layout(name), logfields.Pattern(pattern))
		return "", errors.LayoutNotFoundError(fmt.Sprintf(
			"File %q specified %q as its layout, but no matching file was found at %q",
			resource, name, pattern)).
			WithContext("resource", resource).
			WithContext("layout", name).
			WithContext("pattern", pattern).
			Build()
	}

	sorted := slices.Clone(matches)
	slices.Sort(sorted)
	if len(sorted) > 1 {
		r.logger.Debug("Multiple layout files matched, using first",
			logfields.Layout(name), logfields.Matches(len(sorted)), logfields.LayoutFile(sorted[0]))
	}
	return sorted[0], nil
}

// Merge combines front matter, hook metadata and the resource identifier.
// Later sources override earlier ones; FieldResourcePath always wins.
func Merge(frontMatter, extended map[string]any, resourcePath string) map[string]any {
	merged := make(map[string]any, len(frontMatter)+len(extended)+1)
	maps.Copy(merged, frontMatter)
	maps.Copy(merged, extended)
	merged[FieldResourcePath] = resourcePath
	return merged
}

// Generate renders the module that wraps content in the layout at importPath.
func Generate(importPath string, metadata map[string]any, content string) (string, error) {
	props, err := literal.Object(metadata)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(importPath) + len(props) + len(content) + 64)
	b.WriteString("import layout from ")
	b.WriteString(literal.Quote(importPath))
	b.WriteString("\n\nexport default layout(")
	b.WriteString(props)
	b.WriteString(")\n\n")
	b.WriteString(content)
	b.WriteString("\n")
	return b.String(), nil
}
