package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/mdxlayout/internal/batch"
)

// WatchCmd regenerates modules as pages and layouts change.
type WatchCmd struct {
	Out      string        `short:"o" name:"out" default:"dist" help:"Directory receiving the generated modules"`
	Debounce time.Duration `help:"Quiet period before regenerating (defaults to batch.debounce)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	// Setup signal-based context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	l, err := root.NewLoader(g)
	if err != nil {
		return err
	}
	runner := batch.NewRunner(l, w.Out, batch.WithRecorder(g.Recorder))
	watcher, err := batch.NewWatcher(runner, batch.WithDebounce(w.Debounce))
	if err != nil {
		return err
	}
	if err := watcher.Run(ctx); err != nil {
		return err
	}
	slog.Info("Watcher stopped")
	return nil
}
