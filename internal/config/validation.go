package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/mdxlayout/internal/extend"
	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxlayout/internal/foundation/normalization"
	"git.home.luguber.info/inful/mdxlayout/internal/retry"
)

// extensionForbidden are characters that would change the meaning of the
// layout glob or escape the layout directory.
const extensionForbidden = "*?[]{},\\/"

var retryBackoffNormalizer = normalization.NewNormalizer("retry backoff", map[string]retry.Mode{
	"fixed":       retry.ModeFixed,
	"linear":      retry.ModeLinear,
	"exponential": retry.ModeExponential,
}, retry.ModeLinear)

// RetryPolicy is the backoff policy for module writes.
func (b BatchConfig) RetryPolicy() retry.Policy {
	return retry.NewPolicy(retryBackoffNormalizer.Normalize(b.RetryBackoff), 0, 0, max(b.WriteRetries, 0))
}

// Validate reports every problem found in c as a single configuration error.
func (c Config) Validate() error {
	var problems []error

	if strings.TrimSpace(c.Dir) == "" {
		problems = append(problems, stderrors.New("dir must not be empty"))
	}
	if len(c.PageExtensions) == 0 {
		problems = append(problems, stderrors.New("page_extensions must list at least one extension"))
	}
	seen := make(map[string]bool, len(c.PageExtensions))
	for _, ext := range c.PageExtensions {
		switch {
		case ext == "":
			problems = append(problems, stderrors.New("page_extensions must not contain empty entries"))
		case strings.ContainsAny(ext, extensionForbidden):
			problems = append(problems, fmt.Errorf("page extension %q contains a reserved character", ext))
		case seen[ext]:
			problems = append(problems, fmt.Errorf("duplicate page extension %q", ext))
		}
		seen[ext] = true
	}

	if _, err := extend.ParsePhase(c.ExtendFrontMatter.Phase); err != nil {
		problems = append(problems, err)
	}
	for _, name := range c.ExtendFrontMatter.Hooks {
		if !extend.Known(name) {
			problems = append(problems, fmt.Errorf("unknown front matter hook %q, valid options: %v", name, extend.KnownNames()))
		}
	}

	if c.Batch.Concurrency < 0 {
		problems = append(problems, fmt.Errorf("batch.concurrency must be positive, got %d", c.Batch.Concurrency))
	}
	if _, err := retryBackoffNormalizer.Parse(c.Batch.RetryBackoff); err != nil {
		problems = append(problems, err)
	}
	if _, err := logLevelNormalizer.Parse(c.Logging.Level); err != nil {
		problems = append(problems, err)
	}
	if _, err := logFormatNormalizer.Parse(c.Logging.Format); err != nil {
		problems = append(problems, err)
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.WrapError(stderrors.Join(problems...), errors.CategoryConfig, "invalid configuration").
		WithContext("problems", len(problems)).
		Fatal().
		UserAction().
		Build()
}
