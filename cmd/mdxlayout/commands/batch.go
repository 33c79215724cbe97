package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/mdxlayout/internal/batch"
)

// BatchCmd implements the 'batch' command.
type BatchCmd struct {
	Out         string `short:"o" name:"out" default:"dist" help:"Directory receiving the generated modules"`
	Concurrency int    `short:"j" help:"Pages transformed in parallel (defaults to batch.concurrency)"`
}

func (b *BatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	l, err := root.NewLoader(g)
	if err != nil {
		return err
	}
	opts := []batch.RunnerOption{batch.WithRecorder(g.Recorder)}
	if b.Concurrency > 0 {
		opts = append(opts, batch.WithConcurrency(b.Concurrency))
	}
	report, err := batch.NewRunner(l, b.Out, opts...).RunAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Stdout, "%d wrapped, %d passed through, %d failed\n", report.Wrapped, report.PassThrough, report.Failed)
	return report.Err()
}
