package parsers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/custodia-labs/rulehub/internal/codecs"
	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

// KindFile identifies file-backed content references.
const KindFile = "file"

// Ensure FileContent implements the interface.
var _ domain.ContentRef = (*FileContent)(nil)

// FileContent resolves a rule body by re-reading its source document.
// Edits to the file after load are visible on the next Resolve.
type FileContent struct {
	Path  string
	Codec driven.RuleCodec
}

// Kind returns "file".
func (c *FileContent) Kind() string {
	return KindFile
}

// Location returns the document path.
func (c *FileContent) Location() string {
	return c.Path
}

// Resolve reads the document and returns its rule body.
func (c *FileContent) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Path == "" {
		return "", fmt.Errorf("%w: file content has no path", domain.ErrNotConfigured)
	}
	if c.Codec == nil {
		return "", fmt.Errorf("%w: no codec for %s", domain.ErrNotConfigured, c.Path)
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, c.Path)
		}
		return "", fmt.Errorf("read %s: %w", c.Path, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := codecs.Body(c.Codec, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Path, err)
	}
	return body, nil
}
