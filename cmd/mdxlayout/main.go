package main

import (
	"log/slog"

	"git.home.luguber.info/inful/mdxlayout/cmd/mdxlayout/commands"
	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxlayout/internal/version"
	"github.com/alecthomas/kong"
)

func main() {
	cli := &commands.CLI{}
	global := commands.NewGlobal()

	parser := kong.Parse(cli,
		kong.Name("mdxlayout"),
		kong.Description("Wrap markdown pages in layout modules named by their front matter."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(global, cli)
	if mErr := cli.WriteMetrics(global); mErr != nil {
		slog.Warn("Failed to write metrics file", "error", mErr)
	}
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
