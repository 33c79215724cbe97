package commands

import (
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdxlayout/internal/config"
	"git.home.luguber.info/inful/mdxlayout/internal/loader"
	"git.home.luguber.info/inful/mdxlayout/internal/metrics"
	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
)

// Global is shared state bound into every command.
type Global struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Registry *prometheus.Registry
	Recorder metrics.Recorder
}

// NewGlobal wires stdout/stderr and a fresh metrics registry.
func NewGlobal() *Global {
	reg := prometheus.NewRegistry()
	return &Global{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Registry: reg,
		Recorder: metrics.NewPrometheusRecorder(reg),
	}
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"mdxlayout.yaml"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics to this file when the command finishes"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Transform TransformCmd `cmd:"" help:"Transform one page and print the generated module"`
	Batch     BatchCmd     `cmd:"" help:"Transform every page into an output directory"`
	Watch     WatchCmd     `cmd:"" help:"Transform every page and regenerate pages as they change"`
	Inspect   InspectCmd   `cmd:"" help:"Print a page's parsed front matter as YAML"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig loads the configuration file. A missing file at the default
// path falls back to defaults rooted at the working directory. The default
// logger is replaced with one honoring the configured level and format.
func (c *CLI) LoadConfig() (config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		if c.Config != config.DefaultPath || !stderrors.Is(err, fs.ErrNotExist) {
			return config.Config{}, err
		}
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return config.Config{}, wdErr
		}
		cfg = config.Default(wd)
		slog.Debug("No configuration file, using defaults", "dir", wd)
	}
	slog.SetDefault(cfg.Logging.NewLogger(os.Stderr, c.Verbose))
	return cfg, nil
}

// NewLoader loads the configuration and builds a loader reporting to g.
func (c *CLI) NewLoader(g *Global) (*loader.Loader, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}
	return loader.New(cfg, loader.WithLogger(slog.Default()), loader.WithRecorder(g.Recorder))
}

// WriteMetrics dumps gathered metrics when --metrics-file is set.
func (c *CLI) WriteMetrics(g *Global) error {
	if c.MetricsFile == "" {
		return nil
	}
	return metrics.WriteTextfile(c.MetricsFile, g.Registry)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
