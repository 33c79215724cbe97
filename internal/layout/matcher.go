package layout

import (
	"context"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher finds files on disk matching a glob pattern.
type Matcher interface {
	Match(ctx context.Context, pattern string) ([]string, error)
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(ctx context.Context, pattern string) ([]string, error)

func (f MatcherFunc) Match(ctx context.Context, pattern string) ([]string, error) {
	return f(ctx, pattern)
}

// GlobMatcher matches regular files with doublestar, which understands the
// `{a,b}` alternation used for extension lists. I/O errors during the walk
// are returned instead of being skipped.
type GlobMatcher struct{}

func (GlobMatcher) Match(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
}

// escapeMeta escapes glob metacharacters in a literal path segment so a
// directory named `[draft]` is matched as written. Windows uses `\` as the
// separator, so nothing is escaped there.
func escapeMeta(s string) string {
	if runtime.GOOS == "windows" {
		return s
	}
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
