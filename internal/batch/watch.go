package batch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdxlayout/internal/logfields"
	"github.com/fsnotify/fsnotify"
)

// Watcher re-runs the batch for pages that change on disk. Page edits
// regenerate only the touched pages; any change under the layout directory,
// or a new directory appearing, regenerates everything because layout
// lookups may now resolve differently.
type Watcher struct {
	runner   *Runner
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	onBatch  func(Report)

	pending map[string]struct{}
	full    bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a batch runs.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OnBatch registers a callback invoked after every batch the watcher runs.
func OnBatch(fn func(Report)) WatcherOption {
	return func(w *Watcher) { w.onBatch = fn }
}

// NewWatcher creates a watcher for runner's pages and layout directories.
func NewWatcher(runner *Runner, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		runner:   runner,
		watcher:  fw,
		debounce: runner.loader.Config().Batch.Debounce,
		logger:   slog.Default(),
		pending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run performs an initial full batch and then processes file events until
// ctx is done. The underlying watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	if err := w.addTree(w.runner.PagesRoot()); err != nil {
		return err
	}
	if err := w.addTree(w.runner.LayoutRoot()); err != nil && !os.IsNotExist(err) {
		return err
	}
	w.logger.Info("Watching for changes",
		slog.String("pages", w.runner.PagesRoot()),
		slog.String("layouts", w.runner.LayoutRoot()))

	w.full = true
	w.flush(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			w.flush(ctx)
		}
	}
}

// handle records event and reports whether a batch should be scheduled.
func (w *Watcher) handle(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)
	if within(w.runner.outDir, name) {
		return false
	}
	if within(w.runner.LayoutRoot(), name) {
		w.logger.Debug("Layout change detected", logfields.File(name))
		if event.Has(fsnotify.Create) {
			w.addIfDir(name)
		}
		w.full = true
		return true
	}

	if event.Has(fsnotify.Create) && w.addIfDir(name) {
		w.full = true
		return true
	}
	if !w.runner.IsPage(name) {
		return false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, name)
		if err := w.runner.Remove(name); err != nil {
			w.logger.Warn("Failed to remove module", logfields.File(name), logfields.Error(err))
		}
		return false
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.logger.Debug("Page change detected", logfields.File(name))
		w.pending[name] = struct{}{}
		return true
	default:
		return false
	}
}

func (w *Watcher) flush(ctx context.Context) {
	var report Report
	if w.full {
		r, err := w.runner.RunAll(ctx)
		if err != nil {
			w.logger.Error("Batch failed", logfields.Error(err))
			return
		}
		report = r
	} else {
		files := make([]string, 0, len(w.pending))
		for name := range w.pending {
			files = append(files, name)
		}
		slices.Sort(files)
		report = w.runner.Run(ctx, files)
	}
	w.full = false
	clear(w.pending)

	if w.onBatch != nil {
		w.onBatch(report)
	}
}

// addTree watches dir and all of its subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) addIfDir(name string) bool {
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return false
	}
	if err := w.addTree(name); err != nil {
		w.logger.Warn("Failed to watch new directory", logfields.File(name), logfields.Error(err))
	}
	return true
}

func within(dir, name string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), name)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
