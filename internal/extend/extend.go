// Package extend implements front matter extension hooks.
//
// A hook receives the body of a page and contributes extra metadata that is
// merged on top of the page's own front matter before it is handed to the
// layout. Hooks are configured by name and run in order.
package extend

import (
	"context"
	"fmt"
	"maps"

	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
)

// Phase names the point in a build at which hooks run.
type Phase string

const (
	// PhaseLoader is the per-file transform.
	PhaseLoader Phase = "loader"
	// PhasePrebuild is a whole-site pass run by the host before transforms.
	PhasePrebuild Phase = "prebuild"
	// PhaseBoth runs a hook in either phase.
	PhaseBoth Phase = "both"
)

// Input is what a hook sees of the page.
type Input struct {
	Content      string
	Phase        Phase
	ResourcePath string
}

// Extender contributes additional front matter for a page.
type Extender interface {
	Extend(ctx context.Context, in Input) (map[string]any, error)
}

// Func adapts a plain function to Extender.
type Func func(ctx context.Context, in Input) (map[string]any, error)

func (f Func) Extend(ctx context.Context, in Input) (map[string]any, error) {
	return f(ctx, in)
}

// Hook is a named Extender.
type Hook struct {
	Name     string
	Extender Extender
}

// Chain runs hooks in order. Keys from later hooks override earlier ones.
type Chain []Hook

func (c Chain) Extend(ctx context.Context, in Input) (map[string]any, error) {
	out := make(map[string]any)
	for _, h := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := h.Extender.Extend(ctx, in)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryHook, fmt.Sprintf("front matter hook %q failed", h.Name)).
				WithContext("hook", h.Name).
				WithContext("phase", string(in.Phase)).
				Build()
		}
		maps.Copy(out, fields)
	}
	return out, nil
}

// Names returns the hook names in run order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, h := range c {
		names[i] = h.Name
	}
	return names
}

// ForPhase restricts ext to run only when the input phase matches phase.
// PhaseBoth matches every input phase.
func ForPhase(phase Phase, ext Extender) Extender {
	return Func(func(ctx context.Context, in Input) (map[string]any, error) {
		if phase != PhaseBoth && phase != in.Phase {
			return map[string]any{}, nil
		}
		return ext.Extend(ctx, in)
	})
}

// ParsePhase validates a configured phase name. Empty means PhaseBoth.
func ParsePhase(raw string) (Phase, error) {
	switch Phase(raw) {
	case "":
		return PhaseBoth, nil
	case PhaseLoader, PhasePrebuild, PhaseBoth:
		return Phase(raw), nil
	default:
		return "", fmt.Errorf("invalid hook phase %q, valid options: [both loader prebuild]", raw)
	}
}
