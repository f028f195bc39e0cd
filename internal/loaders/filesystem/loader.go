// Package filesystem loads rules from documents in a local directory.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
	"github.com/custodia-labs/rulehub/internal/loaders"
	"github.com/custodia-labs/rulehub/internal/logger"
	"github.com/custodia-labs/rulehub/internal/parsers"
)

// LoaderType is the canonical loader type for directory sources.
const LoaderType = "directory"

// Aliases are alternative loader type names accepted by CanHandle.
var Aliases = []string{"yamlfile", "file", "filesystem"}

// Ensure Loader implements the interfaces.
var (
	_ driven.RuleLoader      = (*Loader)(nil)
	_ driven.WatchableLoader = (*Loader)(nil)
)

// Loader reads rule documents directly under a directory.
//
// Settings:
//
//	path      directory to read (required)
//	patterns  file globs, list or comma-separated (default "*.yaml,*.yml")
type Loader struct {
	parser *parsers.Parser
}

// New creates a directory loader. A nil parser uses parsers.NewDefault.
func New(parser *parsers.Parser) *Loader {
	if parser == nil {
		parser = parsers.NewDefault()
	}
	return &Loader{parser: parser}
}

// Type returns the loader type identifier.
func (l *Loader) Type() string {
	return LoaderType
}

// CanHandle reports whether the loader accepts loaderType.
func (l *Loader) CanHandle(loaderType string) bool {
	return loaders.CanHandle(loaderType, LoaderType, Aliases...)
}

// LoadRules parses every matching document under the configured directory.
func (l *Loader) LoadRules(ctx context.Context, src domain.SourceDescriptor) ([]domain.Rule, error) {
	dir, patterns, err := settings(src)
	if err != nil {
		return nil, err
	}

	files, err := Enumerate(dir, patterns)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.Rule, 0, len(files))
	for _, path := range files {
		if ctx.Err() != nil {
			logger.Debug("%s: cancelled after %d of %d document(s)", dir, len(rules), len(files))
			break
		}

		rule, err := l.parser.Parse(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		rules = append(rules, *rule)
	}

	logger.Debug("%s: loaded %d of %d document(s)", dir, len(rules), len(files))
	return rules, nil
}

// Enumerate lists regular, non-hidden files directly under dir whose names
// match a pattern, sorted by name.
func Enumerate(dir string, patterns []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrSourceUnavailable, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrSourceUnavailable, dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if loaders.IsHidden(name) || !loaders.Matches(name, patterns) {
			continue
		}

		path := filepath.Join(dir, name)
		if !isRegularFile(entry, path) {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// settings extracts and validates the directory and patterns.
func settings(src domain.SourceDescriptor) (string, []string, error) {
	dir, err := src.String("path")
	if err != nil {
		return "", nil, err
	}
	patterns, err := loaders.Patterns(src)
	if err != nil {
		return "", nil, err
	}
	return filepath.Clean(dir), patterns, nil
}

// isRegularFile follows symlinks so linked documents are included.
func isRegularFile(entry os.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
