// Package exclude implements the skip-pattern matching applied during file
// enumeration.
//
// Patterns match against a file's base name only, never the full path.
// Three shapes are supported: "*suffix" (name ends with suffix),
// "prefix*" (name starts with prefix), and exact literals. The first
// matching pattern wins. There is deliberately no regex or path-segment
// matching; the pattern language mirrors what backup configs have
// historically carried ("*.tmp", "~*", "Thumbs.db").
package exclude

import (
	"path/filepath"
	"strings"
)

// Filter decides whether a path should be excluded from a backup.
type Filter struct {
	patterns []string
}

// NewFilter creates a Filter from the configured patterns.
// An empty or nil pattern list excludes nothing.
func NewFilter(patterns []string) *Filter {
	return &Filter{patterns: patterns}
}

// Match reports whether the file at path matches any exclusion pattern.
// Only the base name of path is considered.
func (f *Filter) Match(path string) bool {
	name := filepath.Base(path)
	for _, pattern := range f.patterns {
		switch {
		case strings.HasPrefix(pattern, "*"):
			if strings.HasSuffix(name, pattern[1:]) {
				return true
			}
		case strings.HasSuffix(pattern, "*"):
			if strings.HasPrefix(name, pattern[:len(pattern)-1]) {
				return true
			}
		case pattern == name:
			return true
		}
	}
	return false
}
