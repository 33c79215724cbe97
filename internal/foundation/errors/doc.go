// Package errors provides classified error primitives used across mdxlayout.
//
// Every failure that can abort a transform is reported as a ClassifiedError so
// the build host (and the CLI adapter) can tell a malformed front matter block
// from a missing layout or an I/O problem without string matching.
//
// Key features:
//   - ErrorCategory: broad classification (config, frontmatter, not_found, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: whether repeating the operation can help
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing formatting
//
// Example usage:
//
//	err := errors.LayoutNotFoundError("no layout file matched").
//		WithContext("layout", name).
//		WithContext("pattern", pattern).
//		Build()
package errors
