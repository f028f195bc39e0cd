// Package github loads rules from a repository directory through the
// GitHub contents API.
package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
	"github.com/custodia-labs/rulehub/internal/loaders"
	"github.com/custodia-labs/rulehub/internal/logger"
	"github.com/custodia-labs/rulehub/internal/parsers"
)

// LoaderType is the canonical loader type for GitHub sources.
const LoaderType = "github"

// DefaultTokenEnv is the environment variable read when no token is set.
const DefaultTokenEnv = "GITHUB_TOKEN"

// Ensure Loader implements the interface.
var _ driven.RuleLoader = (*Loader)(nil)

// Option configures a Loader.
type Option func(*Loader)

// WithRateLimiter replaces the default limiter shared by all sources.
func WithRateLimiter(r *RateLimiter) Option {
	return func(l *Loader) {
		l.limiter = r
	}
}

// Loader reads rule documents from one directory of a GitHub repository
// without cloning it.
//
// Settings:
//
//	repository  "owner/name" or a github.com URL (required)
//	ref         branch, tag or commit (default the repository's default branch)
//	path        directory inside the repository (default root)
//	patterns    file globs, list or comma-separated (default "*.yaml,*.yml")
//	token       access token (optional)
//	token_env   variable holding the token (default GITHUB_TOKEN)
//	base_url    GitHub Enterprise URL (optional)
type Loader struct {
	parser  *parsers.Parser
	limiter *RateLimiter
}

// New creates a GitHub loader. A nil parser uses parsers.NewDefault.
func New(parser *parsers.Parser, opts ...Option) *Loader {
	if parser == nil {
		parser = parsers.NewDefault()
	}
	l := &Loader{parser: parser, limiter: NewRateLimiter(ProactiveRate)}
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
	return loaders.CanHandle(loaderType, LoaderType)
}

// LoadRules lists the configured directory and parses every matching file.
func (l *Loader) LoadRules(ctx context.Context, src domain.SourceDescriptor) ([]domain.Rule, error) {
	s, err := parseSettings(src)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(s.token, s.baseURL, l.limiter)
	if err != nil {
		return nil, err
	}

	logger.Debug("github: listing %s/%s@%s", s.repo, displayPath(s.dir), s.refLabel())
	entries, err := client.ListDir(ctx, s.repo, s.dir, s.ref)
	if err != nil {
		if ctx.Err() != nil {
			return []domain.Rule{}, nil
		}
		if errors.Is(err, domain.ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, s.repo, err)
	}

	files := Enumerate(entries, s.patterns)
	rules := make([]domain.Rule, 0, len(files))
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		origin := fmt.Sprintf("github:%s@%s:%s", s.repo, s.refLabel(), file)
		rule, err := l.parse(ctx, client, s, file, origin)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn("Skipping %s: %v", origin, err)
			continue
		}
		rules = append(rules, *rule)
	}

	logger.Debug("github: %s: loaded %d of %d document(s)", s.repo, len(rules), len(files))
	return rules, nil
}

func (l *Loader) parse(ctx context.Context, client *Client, s settings, file, origin string) (*domain.Rule, error) {
	codec, err := l.parser.CodecFor(file)
	if err != nil {
		return nil, err
	}
	data, err := client.GetFile(ctx, s.repo, file, s.ref)
	if err != nil {
		return nil, err
	}
	content := &APIContent{
		Client: client,
		Repo:   s.repo,
		Path:   file,
		Ref:    s.ref,
		Origin: origin,
		Codec:  codec,
	}
	return l.parser.ParseBytes(origin, data, content)
}

// Enumerate returns the paths of non-hidden file entries whose names match
// a pattern, sorted by name.
func Enumerate(entries []*gh.RepositoryContent, patterns []string) []string {
	var files []string
	for _, entry := range entries {
		name := entry.GetName()
		if entry.GetType() != "file" || loaders.IsHidden(name) || !loaders.Matches(name, patterns) {
			continue
		}
		files = append(files, entry.GetPath())
	}
	sort.Strings(files)
	return files
}

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepo accepts "owner/name", optionally as a github.com URL with a
// ".git" suffix.
func ParseRepo(s string) (Repo, error) {
	trimmed := strings.TrimSpace(s)
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		trimmed = strings.TrimPrefix(trimmed, prefix)
	}
	trimmed = strings.TrimSuffix(strings.TrimSuffix(trimmed, "/"), ".git")

	owner, name, ok := strings.Cut(trimmed, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("%w: repository %q is not owner/name", domain.ErrInvalidSettings, s)
	}
	return Repo{Owner: owner, Name: name}, nil
}

type settings struct {
	repo     Repo
	ref      string
	dir      string
	patterns []string
	token    string
	baseURL  string
}

func (s settings) refLabel() string {
	if s.ref == "" {
		return "HEAD"
	}
	return s.ref
}

func parseSettings(src domain.SourceDescriptor) (settings, error) {
	var s settings

	repository, err := src.String("repository")
	if err != nil {
		return s, err
	}
	if s.repo, err = ParseRepo(repository); err != nil {
		return s, err
	}
	if s.ref, err = src.OptionalString("ref", ""); err != nil {
		return s, err
	}

	dir, err := src.OptionalString("path", "")
	if err != nil {
		return s, err
	}
	// The contents API addresses the root as "".
	s.dir = strings.TrimPrefix(path.Clean("/"+dir), "/")

	if s.patterns, err = loaders.Patterns(src); err != nil {
		return s, err
	}

	if s.token, err = src.OptionalString("token", ""); err != nil {
		return s, err
	}
	if s.token == "" {
		env, err := src.OptionalString("token_env", DefaultTokenEnv)
		if err != nil {
			return s, err
		}
		s.token = os.Getenv(env)
	}

	if s.baseURL, err = src.OptionalString("base_url", ""); err != nil {
		return s, err
	}
	return s, nil
}
