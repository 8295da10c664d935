package codebase

import (
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFilter drops resources whose root-relative path matches gitignore-style patterns.
type IgnoreFilter struct {
	matcher *gitignore.GitIgnore
}

// NewIgnoreFilter compiles the patterns. Blank lines and comments are skipped.
// A filter with no patterns ignores nothing.
func NewIgnoreFilter(patterns ...string) *IgnoreFilter {
	lines := make([]string, 0, len(patterns))

	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}

		lines = append(lines, p)
	}

	if len(lines) == 0 {
		return &IgnoreFilter{}
	}

	return &IgnoreFilter{matcher: gitignore.CompileIgnoreLines(lines...)}
}

// ShouldIgnore reports whether relPath is excluded. The root ("" path) never is.
// Safe to call on a nil receiver.
func (f *IgnoreFilter) ShouldIgnore(relPath string) bool {
	if f == nil || f.matcher == nil || relPath == "" {
		return false
	}

	return f.matcher.MatchesPath(relPath)
}
