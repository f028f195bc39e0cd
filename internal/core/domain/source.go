package domain

import (
	"fmt"
	"strings"
)

// SourceDescriptor names a loader type and carries loader-specific settings.
// It is built once from configuration at startup and never modified.
type SourceDescriptor struct {
	// LoaderType selects the loader; matched case-insensitively.
	LoaderType string

	// Settings holds loader-specific parameters (e.g. "path").
	// Values are untyped here; each loader interprets its own keys.
	Settings map[string]any
}

// Setting returns the value stored under key, matching keys case-insensitively.
// An exact-case key wins; among other spellings the lexically first wins.
func (d SourceDescriptor) Setting(key string) (any, bool) {
	if v, ok := d.Settings[key]; ok {
		return v, true
	}
	match, found := "", false
	for k := range d.Settings {
		if strings.EqualFold(k, key) && (!found || k < match) {
			match, found = k, true
		}
	}
	if !found {
		return nil, false
	}
	return d.Settings[match], true
}

// String returns a required string setting.
// Returns ErrInvalidSettings if the key is absent, empty or not a string.
func (d SourceDescriptor) String(key string) (string, error) {
	v, ok := d.Setting(key)
	if !ok {
		return "", fmt.Errorf("%w: %q is required", ErrInvalidSettings, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrInvalidSettings, key, v)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %q cannot be empty", ErrInvalidSettings, key)
	}
	return s, nil
}

// OptionalString returns a string setting, or def when the key is absent.
// A present value of the wrong type is still ErrInvalidSettings.
func (d SourceDescriptor) OptionalString(key, def string) (string, error) {
	v, ok := d.Setting(key)
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrInvalidSettings, key, v)
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// StringSlice returns a list setting, or def when the key is absent.
// Accepts a list of strings or a comma-separated string.
func (d SourceDescriptor) StringSlice(key string, def []string) ([]string, error) {
	v, ok := d.Setting(key)
	if !ok || v == nil {
		return def, nil
	}

	var out []string
	switch val := v.(type) {
	case string:
		for _, part := range strings.Split(val, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	case []string:
		out = append(out, val...)
	case []any:
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q[%d] must be a string, got %T", ErrInvalidSettings, key, i, item)
			}
			out = append(out, s)
		}
	default:
		return nil, fmt.Errorf("%w: %q must be a list of strings, got %T", ErrInvalidSettings, key, v)
	}

	if len(out) == 0 {
		return def, nil
	}
	return out, nil
}

// Label returns a short description of the descriptor for logs and reports.
func (d SourceDescriptor) Label() string {
	if path, err := d.OptionalString("path", ""); err == nil && path != "" {
		return fmt.Sprintf("%s(%s)", d.LoaderType, path)
	}
	if repo, err := d.OptionalString("repository", ""); err == nil && repo != "" {
		return fmt.Sprintf("%s(%s)", d.LoaderType, repo)
	}
	return d.LoaderType
}
