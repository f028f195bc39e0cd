package git

import (
	"context"
	"fmt"
	"net/url"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// CloneConfig selects a repository and ref to check out.
type CloneConfig struct {
	// URL is the repository URL or local path.
	URL string

	// Branch to clone. Mutually exclusive with Tag.
	Branch string

	// Tag to clone. Mutually exclusive with Branch.
	Tag string
}

// Ref returns the configured ref name, or "HEAD".
func (c CloneConfig) Ref() string {
	switch {
	case c.Branch != "":
		return c.Branch
	case c.Tag != "":
		return c.Tag
	default:
		return "HEAD"
	}
}

// Display returns the URL with any userinfo removed, for origins and logs.
// Both user and password are dropped since token-only URLs carry the
// secret in the user field.
func (c CloneConfig) Display() string {
	u, err := url.Parse(c.URL)
	if err != nil || u.User == nil {
		return c.URL
	}
	u.User = nil
	return u.String()
}

// Cloner checks out a repository and returns its worktree.
type Cloner interface {
	Clone(ctx context.Context, cfg CloneConfig) (billy.Filesystem, error)
}

// MemoryCloner shallow-clones into in-memory filesystems.
// Nothing is written to disk; the worktree lives as long as it is referenced.
type MemoryCloner struct{}

// Clone shallow-clones cfg.URL at the configured branch or tag.
func (MemoryCloner) Clone(ctx context.Context, cfg CloneConfig) (billy.Filesystem, error) {
	opts := &git.CloneOptions{
		URL:   cfg.URL,
		Depth: 1,
	}
	switch {
	case cfg.Branch != "":
		opts.ReferenceName = plumbing.NewBranchReferenceName(cfg.Branch)
		opts.SingleBranch = true
	case cfg.Tag != "":
		opts.ReferenceName = plumbing.NewTagReferenceName(cfg.Tag)
		opts.SingleBranch = true
	}

	// go-git wants separate filesystems for the object store and the worktree.
	worktree := memfs.New()
	storer := filesystem.NewStorage(memfs.New(), cache.NewObjectLRUDefault())

	if _, err := git.CloneContext(ctx, storer, worktree, opts); err != nil {
		return nil, fmt.Errorf("clone %s@%s: %w", cfg.Display(), cfg.Ref(), err)
	}
	return worktree, nil
}
