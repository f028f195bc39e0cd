package git

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/custodia-labs/rulehub/internal/codecs"
	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

// KindGit identifies git worktree content references.
const KindGit = "git"

// Ensure BlobContent implements the interface.
var _ domain.ContentRef = (*BlobContent)(nil)

// BlobContent resolves a rule body from a cloned worktree.
type BlobContent struct {
	FS     billy.Filesystem
	Path   string
	Origin string
	Codec  driven.RuleCodec
}

// Kind returns "git".
func (c *BlobContent) Kind() string {
	return KindGit
}

// Location returns repository@ref:path.
func (c *BlobContent) Location() string {
	if c.Origin != "" {
		return c.Origin
	}
	return c.Path
}

// Resolve reads the document from the worktree and returns its rule body.
func (c *BlobContent) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.FS == nil || c.Path == "" {
		return "", fmt.Errorf("%w: git content has no worktree path", domain.ErrNotConfigured)
	}
	if c.Codec == nil {
		return "", fmt.Errorf("%w: no codec for %s", domain.ErrNotConfigured, c.Location())
	}

	data, err := util.ReadFile(c.FS, c.Path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, c.Location())
		}
		return "", fmt.Errorf("read %s: %w", c.Location(), err)
	}

	body, err := codecs.Body(c.Codec, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Location(), err)
	}
	return body, nil
}
