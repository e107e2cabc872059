package vault

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides which vault paths are excluded, using doublestar globs
// such as "templates/**" or "**/*.excalidraw.md".
type Matcher struct {
	patterns []string
}

// NewMatcher validates patterns and returns a matcher for them.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
		m.patterns = append(m.patterns, pattern)
	}
	return m, nil
}

// Patterns returns the exclude patterns.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// Excludes reports whether a note path matches any pattern.
func (m *Matcher) Excludes(name string) bool {
	if m == nil {
		return false
	}
	for _, pattern := range m.patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// ExcludesDir reports whether a whole directory is excluded.
func (m *Matcher) ExcludesDir(dir string) bool {
	if m == nil {
		return false
	}
	dir = strings.TrimSuffix(dir, "/")
	return m.Excludes(dir) || m.Excludes(dir+"/")
}
