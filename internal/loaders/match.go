package loaders

import (
	"fmt"
	"path"
	"strings"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// DefaultPatterns selects YAML documents when no patterns are configured.
var DefaultPatterns = []string{"*.yaml", "*.yml"}

// Patterns reads the "patterns" setting and validates each glob.
func Patterns(src domain.SourceDescriptor) ([]string, error) {
	patterns, err := src.StringSlice("patterns", DefaultPatterns)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return DefaultPatterns, nil
	}
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("%w: bad pattern %q: %w", domain.ErrInvalidSettings, p, err)
		}
	}
	return patterns, nil
}

// Matches reports whether a file name matches any pattern, ignoring case.
func Matches(name string, patterns []string) bool {
	name = strings.ToLower(name)
	for _, p := range patterns {
		if ok, _ := path.Match(strings.ToLower(p), name); ok {
			return true
		}
	}
	return false
}

// IsHidden reports whether a base name is a dotfile. "." and ".." are not hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// CanHandle matches candidate against a loader type and its aliases, ignoring case.
func CanHandle(candidate, loaderType string, aliases ...string) bool {
	candidate = strings.TrimSpace(candidate)
	if strings.EqualFold(candidate, loaderType) {
		return true
	}
	for _, a := range aliases {
		if strings.EqualFold(candidate, a) {
			return true
		}
	}
	return false
}
