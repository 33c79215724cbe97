package extend

import (
	"fmt"
	"slices"
	"sort"
)

// Built-in hook names.
const (
	HookFingerprint = "fingerprint"
	HookUID         = "uid"
	HookReading     = "reading"
)

var builtins = map[string]func() Extender{
	HookFingerprint: func() Extender { return Fingerprint{} },
	HookUID:         func() Extender { return UID{} },
	HookReading:     func() Extender { return NewReading(DefaultWordsPerMinute) },
}

// Known reports whether name is a built-in hook.
func Known(name string) bool {
	_, ok := builtins[name]
	return ok
}

// KnownNames lists the built-in hook names in sorted order.
func KnownNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build assembles the named built-in hooks into a chain. Duplicate names
// run once, at their first position.
func Build(names []string) (Chain, error) {
	chain := make(Chain, 0, len(names))
	seen := make([]string, 0, len(names))
	for _, name := range names {
		if slices.Contains(seen, name) {
			continue
		}
		ctor, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown front matter hook %q, valid options: %v", name, KnownNames())
		}
		seen = append(seen, name)
		chain = append(chain, Hook{Name: name, Extender: ctor()})
	}
	return chain, nil
}
