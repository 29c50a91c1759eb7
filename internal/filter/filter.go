package filter

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const DefaultPattern = "*.py"

// Filter decides whether a changed file name is worth a reload. Hidden names
// never match.
type Filter struct {
	patterns []string
}

func New(patterns []string) (*Filter, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
	}

	return &Filter{
		patterns: append([]string(nil), patterns...),
	}, nil
}

func (f *Filter) Match(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}

	for _, pattern := range f.patterns {
		// patterns are validated in New
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}

	return false
}

func (f *Filter) Patterns() []string {
	return append([]string(nil), f.patterns...)
}
