package layout

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/mdxlayout/internal/extend"
	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLayouts creates empty layout files under <root>/layouts.
func writeLayouts(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, "layouts", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("export default () => null\n"), 0o644))
	}
}

func testOptions(root string) Options {
	return Options{
		Dir:        root,
		LayoutPath: "layouts",
		Extensions: []string{"mdx", "md"},
	}
}

func staticMatcher(matches ...string) Matcher {
	return MatcherFunc(func(context.Context, string) ([]string, error) { return matches, nil })
}

type countingExtender struct {
	calls  int
	fields map[string]any
	inputs []extend.Input
}

func (c *countingExtender) Extend(_ context.Context, in extend.Input) (map[string]any, error) {
	c.calls++
	c.inputs = append(c.inputs, in)
	return c.fields, nil
}

func TestResolve_PassThroughIsIdentity(t *testing.T) {
	hook := &countingExtender{fields: map[string]any{"x": 1}}
	r := NewResolver(testOptions(t.TempDir()), staticMatcher(), hook)

	contents := []string{
		"",
		"# Hello\n",
		"import X from 'y'\n\n<X />\n",
		"no trailing newline",
		"---\nnot front matter anymore\n---\n",
	}
	for _, content := range contents {
		for _, fm := range []map[string]any{nil, {}, {"title": "T"}, {"layout": ""}, {"layout": nil}, {"layout": false}, {"layout": 0}, {"layout": int64(0)}, {"layout": 0.0}} {
			res, err := r.Resolve(context.Background(), Request{FrontMatter: fm, Content: content, ResourcePath: "a.md"})
			require.NoError(t, err)
			assert.Equal(t, StatePassThrough, res.State)
			assert.Equal(t, content, res.Output)
			assert.Nil(t, res.Metadata)
		}
	}
	assert.Zero(t, hook.calls, "hook must not run for pass-through pages")
}

func TestResolve_WrapsWithSingleMatch(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, "post.md")
	hook := &countingExtender{fields: map[string]any{"readingTime": 3, "title": "From Hook"}}
	r := NewResolver(testOptions(root), nil, hook)

	res, err := r.Resolve(context.Background(), Request{
		FrontMatter: map[string]any{
			"layout":         "post",
			"title":          "From Front Matter",
			"draft":          true,
			"__resourcePath": "spoofed.md",
		},
		Content:      "# Body\n",
		ResourcePath: "blog/hello.md",
	})
	require.NoError(t, err)

	stem := filepath.Join(root, "layouts", "post")
	assert.Equal(t, StateWrapped, res.State)
	assert.Equal(t, "post", res.LayoutName)
	assert.Equal(t, stem+".md", res.LayoutFile)
	assert.Equal(t, stem+".{mdx,md}", res.Pattern)
	assert.Equal(t, map[string]any{
		"layout":         "post",
		"title":          "From Hook",
		"draft":          true,
		"readingTime":    3,
		"__resourcePath": "blog/hello.md",
	}, res.Metadata)

	want := "import layout from '" + filepath.ToSlash(stem) + "'\n\n" +
		"export default layout({\n" +
		"\t__resourcePath: 'blog/hello.md',\n" +
		"\tdraft: true,\n" +
		"\tlayout: 'post',\n" +
		"\treadingTime: 3,\n" +
		"\ttitle: 'From Hook'\n" +
		"})\n\n" +
		"# Body\n\n"
	assert.Equal(t, want, res.Output)

	require.Equal(t, 1, hook.calls)
	assert.Equal(t, extend.Input{Content: "# Body\n", Phase: extend.PhaseLoader, ResourcePath: "blog/hello.md"}, hook.inputs[0])
}

func TestResolve_DefaultLayoutUsesIndex(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, "index.mdx")
	opts := testOptions(root)
	opts.DefaultLayout = true
	r := NewResolver(opts, nil, nil)

	res, err := r.Resolve(context.Background(), Request{
		FrontMatter:  map[string]any{"title": "Home"},
		Content:      "Welcome\n",
		ResourcePath: "index.mdx",
	})
	require.NoError(t, err)
	assert.Equal(t, StateWrapped, res.State)
	assert.Equal(t, DefaultLayoutName, res.LayoutName)
	assert.Equal(t, filepath.Join(root, "layouts", "index.mdx"), res.LayoutFile)
	assert.Equal(t, "index", res.Metadata["layout"])

	// Behaves exactly as if the field had been set.
	explicit, err := r.Resolve(context.Background(), Request{
		FrontMatter:  map[string]any{"title": "Home", "layout": "index"},
		Content:      "Welcome\n",
		ResourcePath: "index.mdx",
	})
	require.NoError(t, err)
	assert.Equal(t, explicit.Output, res.Output)
}

func TestResolve_DefaultLayoutDoesNotOverrideExplicit(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, "index.mdx", "docs.mdx")
	opts := testOptions(root)
	opts.DefaultLayout = true

	res, err := NewResolver(opts, nil, nil).Resolve(context.Background(), Request{
		FrontMatter: map[string]any{"layout": "docs"},
	})
	require.NoError(t, err)
	assert.Equal(t, "docs", res.LayoutName)
}

func TestResolve_MissingLayoutFails(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, "post.md")
	hook := &countingExtender{}
	r := NewResolver(testOptions(root), nil, hook)

	res, err := r.Resolve(context.Background(), Request{
		FrontMatter:  map[string]any{"layout": "missing"},
		Content:      "body",
		ResourcePath: "blog/lost.md",
	})
	require.Error(t, err)
	assert.Empty(t, res.Output, "no partial output on failure")

	pattern := filepath.Join(root, "layouts", "missing") + ".{mdx,md}"
	msg := err.Error()
	assert.Contains(t, msg, `"missing"`)
	assert.Contains(t, msg, `"blog/lost.md"`)
	assert.Contains(t, msg, pattern)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	got, _ := classified.Context().GetString("pattern")
	assert.Equal(t, pattern, got)

	assert.Equal(t, 1, hook.calls, "hook runs before the lookup regardless of outcome")
}

func TestResolve_DefaultLayoutMissingFails(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.DefaultLayout = true

	_, err := NewResolver(opts, nil, nil).Resolve(context.Background(), Request{ResourcePath: "a.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"index"`)
}

func TestResolve_MultipleMatchesSortedFirstWins(t *testing.T) {
	r := NewResolver(testOptions("/site"), staticMatcher("/site/layouts/post.mdx", "/site/layouts/post.md"), nil)

	res, err := r.Resolve(context.Background(), Request{FrontMatter: map[string]any{"layout": "post"}})
	require.NoError(t, err)
	assert.Equal(t, "/site/layouts/post.md", res.LayoutFile)
}

func TestResolve_MultipleMatchesOnDisk(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, "post.mdx", "post.md", "post.txt", "poster.md")

	res, err := NewResolver(testOptions(root), nil, nil).Resolve(context.Background(), Request{
		FrontMatter: map[string]any{"layout": "post"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "layouts", "post.md"), res.LayoutFile)
}

func TestResolve_ImportResolvedFile(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, "post.mdx")
	opts := testOptions(root)
	opts.ImportResolvedFile = true

	res, err := NewResolver(opts, nil, nil).Resolve(context.Background(), Request{
		FrontMatter: map[string]any{"layout": "post"},
	})
	require.NoError(t, err)
	wantImport := "import layout from '" + filepath.ToSlash(filepath.Join(root, "layouts", "post.mdx")) + "'\n"
	assert.True(t, strings.HasPrefix(res.Output, wantImport), res.Output)
}

func TestResolve_NestedLayoutNameAndAbsoluteLayoutPath(t *testing.T) {
	layouts := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(layouts, "blog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(layouts, "blog", "entry.md"), nil, 0o644))

	opts := Options{Dir: "/elsewhere", LayoutPath: layouts, Extensions: []string{"md"}}
	res, err := NewResolver(opts, nil, nil).Resolve(context.Background(), Request{
		FrontMatter: map[string]any{"layout": "blog/entry"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(layouts, "blog", "entry.md"), res.LayoutFile)
	assert.Equal(t, filepath.Join(layouts, "blog", "entry")+".md", res.Pattern)
}

func TestResolve_MatcherErrorPropagates(t *testing.T) {
	ioErr := stderrors.New("permission denied")
	matcher := MatcherFunc(func(context.Context, string) ([]string, error) { return nil, ioErr })

	_, err := NewResolver(testOptions("/site"), matcher, nil).Resolve(context.Background(), Request{
		FrontMatter: map[string]any{"layout": "post"},
	})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ioErr))
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestResolve_HookErrorAbortsBeforeLookup(t *testing.T) {
	hookErr := stderrors.New("hook exploded")
	lookedUp := false
	matcher := MatcherFunc(func(context.Context, string) ([]string, error) {
		lookedUp = true
		return []string{"/site/layouts/post.md"}, nil
	})
	hook := extend.Func(func(context.Context, extend.Input) (map[string]any, error) { return nil, hookErr })

	_, err := NewResolver(testOptions("/site"), matcher, hook).Resolve(context.Background(), Request{
		FrontMatter: map[string]any{"layout": "post"},
	})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, hookErr))
	assert.True(t, errors.HasCategory(err, errors.CategoryHook))
	assert.False(t, lookedUp)
}

func TestResolve_NonStringLayoutRejected(t *testing.T) {
	r := NewResolver(testOptions("/site"), staticMatcher("/site/layouts/x.md"), nil)
	for _, v := range []any{42, true, []any{"post"}, map[string]any{"name": "post"}} {
		_, err := r.Resolve(context.Background(), Request{FrontMatter: map[string]any{"layout": v}, ResourcePath: "a.md"})
		require.Error(t, err, "%v", v)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation), "%v", v)
	}
}

func TestResolve_UnserializableMetadataFails(t *testing.T) {
	hook := extend.Func(func(context.Context, extend.Input) (map[string]any, error) {
		return map[string]any{"bad": make(chan int)}, nil
	})
	_, err := NewResolver(testOptions("/site"), staticMatcher("/site/layouts/post.md"), hook).Resolve(context.Background(), Request{
		FrontMatter: map[string]any{"layout": "post"},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryGenerate))
}

func TestResolve_DoesNotMutateFrontMatter(t *testing.T) {
	opts := testOptions("/site")
	opts.DefaultLayout = true
	hook := extend.Func(func(context.Context, extend.Input) (map[string]any, error) {
		return map[string]any{"extra": 1}, nil
	})
	fm := map[string]any{"title": "T"}

	_, err := NewResolver(opts, staticMatcher("/site/layouts/index.md"), hook).Resolve(context.Background(), Request{FrontMatter: fm})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "T"}, fm)
}

func TestResolve_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, "post.mdx")
	hook, err := extend.Build([]string{extend.HookFingerprint, extend.HookUID, extend.HookReading})
	require.NoError(t, err)
	r := NewResolver(testOptions(root), nil, hook)

	req := Request{
		FrontMatter:  map[string]any{"layout": "post", "tags": []any{"b", "a"}, "meta": map[string]any{"z": 1, "a": 2}},
		Content:      "# Title\n\nSome words here.\n",
		ResourcePath: "blog/post.mdx",
	}
	first, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	for range 5 {
		again, err := r.Resolve(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, first.Output, again.Output)
	}
}

func TestMerge_Precedence(t *testing.T) {
	merged := Merge(
		map[string]any{"a": 1, "b": 1, FieldResourcePath: "user"},
		map[string]any{"b": 2, "c": 2, FieldResourcePath: "hook"},
		"pages/x.md",
	)
	assert.Equal(t, map[string]any{"a": 1, "b": 2, "c": 2, FieldResourcePath: "pages/x.md"}, merged)
}

func TestGenerate_EscapesImportPath(t *testing.T) {
	out, err := Generate("/it's/layouts/post", map[string]any{}, "body")
	require.NoError(t, err)
	assert.Equal(t, "import layout from '/it\\'s/layouts/post'\n\nexport default layout({})\n\nbody\n", out)
}

func TestEscapeMeta(t *testing.T) {
	if filepath.Separator != '/' {
		t.Skip("glob escaping is disabled on Windows")
	}
	assert.Equal(t, `/site/\[draft\]/layouts/post`, escapeMeta("/site/[draft]/layouts/post"))
	assert.Equal(t, "/plain/path", escapeMeta("/plain/path"))
}

func TestGlobMatcher_EscapedDirectory(t *testing.T) {
	if filepath.Separator != '/' {
		t.Skip("glob escaping is disabled on Windows")
	}
	root := filepath.Join(t.TempDir(), "[site]")
	writeLayouts(t, root, "post.md")

	res, err := NewResolver(testOptions(root), nil, nil).Resolve(context.Background(), Request{
		FrontMatter: map[string]any{"layout": "post"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "layouts", "post.md"), res.LayoutFile)
}

func TestGlobMatcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GlobMatcher{}.Match(ctx, "/does/not/matter.{md}")
	require.ErrorIs(t, err, context.Canceled)
}
