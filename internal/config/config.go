package config

import (
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "mdxlayout.yaml"

// Defaults applied to unset fields.
const (
	DefaultPagesDir    = "pages"
	DefaultLayoutPath  = "layouts"
	DefaultConcurrency  = 4
	DefaultDebounce     = 250 * time.Millisecond
	DefaultWriteRetries = 2
)

// DefaultPageExtensions are the layout file extensions accepted when none are configured.
var DefaultPageExtensions = []string{"mdx", "md"}

// Config is the project configuration. It is loaded once and passed by
// value; nothing in the transform path modifies it.
type Config struct {
	// Dir is the project root. Relative values resolve against the
	// directory holding the configuration file.
	Dir                string        `yaml:"dir"`
	PagesDir           string        `yaml:"pages_dir"`
	LayoutPath         string        `yaml:"layout_path"`
	DefaultLayout      bool          `yaml:"default_layout"`
	PageExtensions     []string      `yaml:"page_extensions"`
	ImportResolvedFile bool          `yaml:"import_resolved_file"`
	ExtendFrontMatter  ExtendConfig  `yaml:"extend_front_matter"`
	Batch              BatchConfig   `yaml:"batch"`
	Logging            LoggingConfig `yaml:"logging"`
}

// ExtendConfig selects the front matter hooks and the build phase they run in.
type ExtendConfig struct {
	Phase string   `yaml:"phase"`
	Hooks []string `yaml:"hooks"`
}

// BatchConfig tunes the batch and watch commands.
type BatchConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Debounce    time.Duration `yaml:"debounce"`
	// WriteRetries bounds retries of failed module writes. Negative disables retrying.
	WriteRetries int    `yaml:"write_retries"`
	RetryBackoff string `yaml:"retry_backoff"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file exists, rooted at dir.
func Default(dir string) Config {
	cfg := Config{Dir: dir}
	cfg.applyDefaults()
	return cfg
}

// Load reads, expands and validates the configuration file at path.
// .env files next to it are loaded first so ${VAR} references resolve.
func Load(path string) (Config, error) {
	baseDir := filepath.Dir(path)
	if err := loadEnvFiles(baseDir); err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WrapError(err, errors.CategoryConfig, "cannot read configuration file").
			WithContext("path", path).
			Fatal().
			Build()
	}
	cfg, err := Parse(data, baseDir)
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return Config{}, classified.WithContext("path", path)
		}
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration, expanding ${VAR} references from the
// environment. Unknown fields are rejected.
func Parse(data []byte, baseDir string) (Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return Config{}, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}

	switch {
	case cfg.Dir == "":
		cfg.Dir = baseDir
	case !filepath.IsAbs(cfg.Dir):
		cfg.Dir = filepath.Join(baseDir, cfg.Dir)
	}
	if abs, err := filepath.Abs(cfg.Dir); err == nil {
		cfg.Dir = abs
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.PagesDir == "" {
		c.PagesDir = DefaultPagesDir
	}
	if c.LayoutPath == "" {
		c.LayoutPath = DefaultLayoutPath
	}
	if len(c.PageExtensions) == 0 {
		c.PageExtensions = slices.Clone(DefaultPageExtensions)
	} else {
		exts := make([]string, 0, len(c.PageExtensions))
		for _, ext := range c.PageExtensions {
			exts = append(exts, strings.TrimPrefix(strings.TrimSpace(ext), "."))
		}
		c.PageExtensions = exts
	}
	if c.Batch.Concurrency == 0 {
		c.Batch.Concurrency = DefaultConcurrency
	}
	if c.Batch.Debounce <= 0 {
		c.Batch.Debounce = DefaultDebounce
	}
	if c.Batch.WriteRetries == 0 {
		c.Batch.WriteRetries = DefaultWriteRetries
	}
}

// PagesRoot is the absolute-or-relative directory holding page sources.
func (c Config) PagesRoot() string {
	return c.resolve(c.PagesDir)
}

// LayoutRoot is the directory holding layout files.
func (c Config) LayoutRoot() string {
	return c.resolve(c.LayoutPath)
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
