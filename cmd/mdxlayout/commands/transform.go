package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
)

// TransformCmd implements the 'transform' command.
type TransformCmd struct {
	File   string `arg:"" help:"Page source file" type:"existingfile"`
	Output string `short:"o" help:"Write the module to this file instead of stdout"`
}

func (t *TransformCmd) Run(g *Global, root *CLI) error {
	l, err := root.NewLoader(g)
	if err != nil {
		return err
	}
	res, err := l.TransformFile(context.Background(), absPath(t.File))
	if err != nil {
		return err
	}

	if t.Output == "" {
		_, err = io.WriteString(g.Stdout, res.Output)
		return err
	}
	if err := os.WriteFile(t.Output, []byte(res.Output), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot write module").
			WithContext("file", t.Output).
			Build()
	}
	fmt.Fprintf(g.Stderr, "%s -> %s (%s)\n", res.ID, t.Output, res.State)
	return nil
}
