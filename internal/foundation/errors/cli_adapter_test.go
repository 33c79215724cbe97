package errors

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation error", ValidationError("layout must be a string").Build(), 2},
		{"front matter error", FrontMatterError("bad yaml").Build(), 3},
		{"layout not found", LayoutNotFoundError("no layout").Build(), 4},
		{"hook error", HookError("hook failed").Build(), 5},
		{"config error", ConfigError("bad config").Build(), 7},
		{"filesystem error", FileSystemError("read failed").Build(), 11},
		{"internal error", InternalError("boom").Build(), 10},
		{"unclassified error", &customError{msg: "unknown error"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)

	notFound := LayoutNotFoundError(`File "blog/a.md" specified "post" as its layout`).Build()
	if got := quiet.FormatError(notFound); got != `Error: File "blog/a.md" specified "post" as its layout` {
		t.Errorf("unexpected quiet format: %q", got)
	}
	if got := verbose.FormatError(notFound); !strings.HasPrefix(got, "[not_found:error]") {
		t.Errorf("expected verbose format to carry category, got %q", got)
	}

	internal := InternalError("boom").Build()
	if got := quiet.FormatError(internal); !strings.Contains(got, "use -v") {
		t.Errorf("expected terse internal message, got %q", got)
	}

	wrapped := WrapError(errors.New("EACCES"), CategoryFileSystem, "glob failed").Build()
	if got := quiet.FormatError(wrapped); got != "Error: glob failed: EACCES" {
		t.Errorf("unexpected wrapped format: %q", got)
	}

	if got := quiet.FormatError(errors.New("plain")); got != "Error: plain" {
		t.Errorf("unexpected plain format: %q", got)
	}
	if quiet.FormatError(nil) != "" {
		t.Error("expected empty string for nil error")
	}
}
