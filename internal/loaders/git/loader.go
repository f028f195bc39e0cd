// Package git loads rules from documents in a git repository.
package git

import (
	"context"
	"fmt"
	"path"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
	"github.com/custodia-labs/rulehub/internal/loaders"
	"github.com/custodia-labs/rulehub/internal/logger"
	"github.com/custodia-labs/rulehub/internal/parsers"
)

// LoaderType is the canonical loader type for git sources.
const LoaderType = "git"

// Aliases are alternative loader type names accepted by CanHandle.
var Aliases = []string{"gitrepository"}

// Ensure Loader implements the interface.
var _ driven.RuleLoader = (*Loader)(nil)

// Option configures a Loader.
type Option func(*Loader)

// WithCloner replaces the default in-memory cloner.
func WithCloner(c Cloner) Option {
	return func(l *Loader) {
		l.cloner = c
	}
}

// Loader reads rule documents from one directory of a git repository.
//
// Settings:
//
//	repository  clone URL or local path (required)
//	branch      branch to check out (optional)
//	tag         tag to check out (optional, exclusive with branch)
//	path        directory inside the repository (default root)
//	patterns    file globs, list or comma-separated (default "*.yaml,*.yml")
type Loader struct {
	parser *parsers.Parser
	cloner Cloner
}

// New creates a git loader. A nil parser uses parsers.NewDefault.
func New(parser *parsers.Parser, opts ...Option) *Loader {
	if parser == nil {
		parser = parsers.NewDefault()
	}
	l := &Loader{parser: parser, cloner: MemoryCloner{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Type returns the loader type identifier.
func (l *Loader) Type() string {
	return LoaderType
}

// CanHandle reports whether the loader accepts loaderType.
func (l *Loader) CanHandle(loaderType string) bool {
	return loaders.CanHandle(loaderType, LoaderType, Aliases...)
}

// LoadRules clones the repository and parses every matching document
// directly under the configured path.
func (l *Loader) LoadRules(ctx context.Context, src domain.SourceDescriptor) ([]domain.Rule, error) {
	s, err := parseSettings(src)
	if err != nil {
		return nil, err
	}

	logger.Debug("git: cloning %s@%s", s.clone.Display(), s.clone.Ref())
	worktree, err := l.cloner.Clone(ctx, s.clone)
	if err != nil {
		if ctx.Err() != nil {
			return []domain.Rule{}, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	files, err := Enumerate(worktree, s.dir, s.patterns)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.Rule, 0, len(files))
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		origin := fmt.Sprintf("%s@%s:%s", s.clone.Display(), s.clone.Ref(), file)
		rule, err := l.parse(worktree, file, origin)
		if err != nil {
			logger.Warn("Skipping %s: %v", origin, err)
			continue
		}
		rules = append(rules, *rule)
	}

	logger.Debug("git: %s: loaded %d of %d document(s)", s.clone.Display(), len(rules), len(files))
	return rules, nil
}

func (l *Loader) parse(worktree billy.Filesystem, file, origin string) (*domain.Rule, error) {
	codec, err := l.parser.CodecFor(file)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(worktree, file)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	content := &BlobContent{FS: worktree, Path: file, Origin: origin, Codec: codec}
	return l.parser.ParseBytes(origin, data, content)
}

// Enumerate lists regular, non-hidden files directly under dir in fs whose
// names match a pattern, sorted by name.
func Enumerate(fs billy.Filesystem, dir string, patterns []string) ([]string, error) {
	info, err := fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrSourceUnavailable, dir)
	}

	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrSourceUnavailable, dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Mode().IsRegular() || loaders.IsHidden(name) || !loaders.Matches(name, patterns) {
			continue
		}
		files = append(files, fs.Join(dir, name))
	}
	return files, nil
}

type settings struct {
	clone    CloneConfig
	dir      string
	patterns []string
}

func parseSettings(src domain.SourceDescriptor) (settings, error) {
	var s settings
	var err error

	if s.clone.URL, err = src.String("repository"); err != nil {
		return s, err
	}
	if s.clone.Branch, err = src.OptionalString("branch", ""); err != nil {
		return s, err
	}
	if s.clone.Tag, err = src.OptionalString("tag", ""); err != nil {
		return s, err
	}
	if s.clone.Branch != "" && s.clone.Tag != "" {
		return s, fmt.Errorf("%w: \"branch\" and \"tag\" are mutually exclusive", domain.ErrInvalidSettings)
	}

	dir, err := src.OptionalString("path", "/")
	if err != nil {
		return s, err
	}
	// Rooting before cleaning keeps ".." from leaving the worktree.
	s.dir = path.Clean("/" + dir)

	if s.patterns, err = loaders.Patterns(src); err != nil {
		return s, err
	}
	return s, nil
}
