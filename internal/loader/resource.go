package loader

import (
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ResourceID computes the page identifier: resourcePath with forward
// slashes, the <root>/<pagesDir> prefix and the leading slash removed.
// An absolute pagesDir is used as the prefix on its own.
// Paths outside the pages directory keep their full (slash-separated) form.
// The result is NFC-normalized so decomposed file names from some
// filesystems produce the same identifier as composed ones.
func ResourceID(root, pagesDir, resourcePath string) string {
	p := toUnix(resourcePath)
	prefix := toUnix(root)
	switch pages := toUnix(pagesDir); {
	case pages == "":
	case path.IsAbs(pages) || filepath.IsAbs(pagesDir):
		prefix = pages
	default:
		prefix = path.Join(prefix, pages)
	}
	prefix = strings.TrimSuffix(path.Clean(prefix), "/")

	if rest, ok := strings.CutPrefix(p, prefix); ok && (rest == "" || rest[0] == '/') {
		p = rest
	}
	return norm.NFC.String(strings.TrimPrefix(p, "/"))
}

func toUnix(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
