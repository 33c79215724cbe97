package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyResource   = "resource"
	KeyFile       = "file"
	KeyLayout     = "layout"
	KeyLayoutFile = "layout_file"
	KeyPattern    = "pattern"
	KeyMatches    = "matches"
	KeyPhase      = "phase"
	KeyHook       = "hook"
	KeyState      = "state"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Resource(id string) slog.Attr    { return slog.String(KeyResource, id) }
func File(path string) slog.Attr      { return slog.String(KeyFile, path) }
func Layout(name string) slog.Attr    { return slog.String(KeyLayout, name) }
func LayoutFile(p string) slog.Attr   { return slog.String(KeyLayoutFile, p) }
func Pattern(p string) slog.Attr      { return slog.String(KeyPattern, p) }
func Matches(n int) slog.Attr         { return slog.Int(KeyMatches, n) }
func Phase(p string) slog.Attr        { return slog.String(KeyPhase, p) }
func Hook(name string) slog.Attr      { return slog.String(KeyHook, name) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
