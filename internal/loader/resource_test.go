package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceID(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		pagesDir string
		path     string
		want     string
	}{
		{"nested page", "/site", "pages", "/site/pages/blog/hello.mdx", "blog/hello.mdx"},
		{"top level page", "/site", "pages", "/site/pages/index.md", "index.md"},
		{"trailing slash on root", "/site/", "pages", "/site/pages/a.md", "a.md"},
		{"windows separators", `C:\site`, "pages", `C:\site\pages\docs\a.md`, "docs/a.md"},
		{"outside pages keeps path", "/site", "pages", "/site/components/a.md", "site/components/a.md"},
		{"sibling prefix not stripped", "/site", "pages", "/site/pagesx/a.md", "site/pagesx/a.md"},
		{"relative root", ".", "pages", "pages/a.md", "a.md"},
		{"custom pages dir", "/site", "content/docs", "/site/content/docs/x/y.md", "x/y.md"},
		{"absolute pages dir", "/site", "/srv/content", "/srv/content/blog/a.md", "blog/a.md"},
		{"absolute pages dir ignores root", "/site", "/srv/content", "/site/srv/content/a.md", "site/srv/content/a.md"},
		{"nfc normalization", "/site", "pages", "/site/pages/cafe\u0301.md", "caf\u00e9.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResourceID(tt.root, tt.pagesDir, tt.path))
		})
	}
}
