package github

import (
	"context"
	"fmt"

	"github.com/custodia-labs/rulehub/internal/codecs"
	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

// KindGitHub identifies GitHub contents API references.
const KindGitHub = "github"

// Ensure APIContent implements the interface.
var _ domain.ContentRef = (*APIContent)(nil)

// APIContent resolves a rule body by fetching the file again, so pushes
// to a branch are picked up without reloading.
type APIContent struct {
	Client *Client
	Repo   Repo
	Path   string
	Ref    string
	Origin string
	Codec  driven.RuleCodec
}

// Kind returns "github".
func (c *APIContent) Kind() string {
	return KindGitHub
}

// Location returns the document origin.
func (c *APIContent) Location() string {
	if c.Origin != "" {
		return c.Origin
	}
	return fmt.Sprintf("github:%s:%s", c.Repo, c.Path)
}

// Resolve fetches the file and extracts its body. A file deleted upstream
// is domain.ErrNotFound.
func (c *APIContent) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Client == nil || c.Path == "" || c.Codec == nil {
		return "", fmt.Errorf("%w: incomplete github content reference", domain.ErrNotConfigured)
	}

	data, err := c.Client.GetFile(ctx, c.Repo, c.Path, c.Ref)
	if err != nil {
		return "", err
	}
	return codecs.Body(c.Codec, data)
}
