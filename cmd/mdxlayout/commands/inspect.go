package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxlayout/internal/frontmatter"
	"git.home.luguber.info/inful/mdxlayout/internal/layout"
	"git.home.luguber.info/inful/mdxlayout/internal/loader"
)

// InspectCmd prints the metadata of a page.
type InspectCmd struct {
	File   string `arg:"" help:"Page source file" type:"existingfile"`
	Merged bool   `help:"Print the merged metadata passed to the layout instead of the raw front matter"`
}

func (i *InspectCmd) Run(g *Global, root *CLI) error {
	path := absPath(i.File)

	var fields map[string]any
	var style frontmatter.Style
	if i.Merged {
		l, err := root.NewLoader(g)
		if err != nil {
			return err
		}
		res, err := l.TransformFile(context.Background(), path)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.Stdout, "# %s (%s)\n", res.ID, res.State)
		if res.State == layout.StatePassThrough {
			return nil
		}
		fields = res.Metadata
	} else {
		cfg, err := root.LoadConfig()
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "cannot read page").WithContext("file", path).Build()
		}
		block, err := frontmatter.Split(src)
		if err == nil {
			style = block.Style
		}
		doc, err := frontmatter.Parse(src)
		if err != nil {
			return err
		}
		fields = doc.Data
		fmt.Fprintf(g.Stdout, "# %s (%s)\n", loader.ResourceID(cfg.Dir, cfg.PagesDir, path), languageOf(doc))
	}

	out, err := frontmatter.SerializeYAML(fields, style)
	if err != nil {
		return errors.WrapError(err, errors.CategoryGenerate, "cannot render metadata").Build()
	}
	_, err = g.Stdout.Write(out)
	return err
}

func languageOf(doc frontmatter.Document) string {
	if !doc.HadFrontMatter {
		return "no front matter"
	}
	return string(doc.Language)
}
