package fileutil

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"
)

// DefaultIgnoreNames are OS artifacts that are never copied. Archives built on
// macOS carry them and some hosts fail to copy them.
var DefaultIgnoreNames = []string{".DS_Store", "__MACOSX"}

// IgnoreSet holds bare entry names, and optionally name patterns, that are
// skipped during tree traversal. Membership depends on the entry name only,
// never on its depth or path.
type IgnoreSet struct {
	names    map[string]struct{}
	patterns []glob.Glob
}

// NewIgnoreSet returns the union of DefaultIgnoreNames and names. The names
// slice is not retained.
func NewIgnoreSet(names ...string) IgnoreSet {
	set := IgnoreSet{names: make(map[string]struct{}, len(DefaultIgnoreNames)+len(names))}
	for _, n := range DefaultIgnoreNames {
		set.names[n] = struct{}{}
	}
	for _, n := range names {
		if n != "" {
			set.names[n] = struct{}{}
		}
	}
	return set
}

// WithPatterns returns a copy of s that also ignores names matching any of
// the glob patterns, e.g. "*.tmp" or "._*".
func (s IgnoreSet) WithPatterns(patterns ...string) (IgnoreSet, error) {
	out := IgnoreSet{
		names:    s.names,
		patterns: make([]glob.Glob, 0, len(s.patterns)+len(patterns)),
	}
	out.patterns = append(out.patterns, s.patterns...)
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return IgnoreSet{}, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		out.patterns = append(out.patterns, g)
	}
	return out, nil
}

// with returns a copy of s extended by names, keeping its patterns.
func (s IgnoreSet) with(names []string) IgnoreSet {
	out := NewIgnoreSet(names...)
	for n := range s.names {
		out.names[n] = struct{}{}
	}
	out.patterns = s.patterns
	return out
}

// Contains reports whether an entry called name is ignored.
func (s IgnoreSet) Contains(name string) bool {
	if _, ok := s.names[name]; ok {
		return true
	}
	for _, g := range s.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Names returns the exact names in the set, sorted.
func (s IgnoreSet) Names() []string {
	names := make([]string, 0, len(s.names))
	for n := range s.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
