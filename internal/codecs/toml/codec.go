// Package toml decodes TOML rule documents.
package toml

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/rulehub/internal/codecs"
	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.RuleCodec = (*Codec)(nil)

// Codec decodes TOML rule documents.
//
// Example document:
//
//	id = "error-wrapping"
//	description = "Wrap returned errors with context"
//	language = "go"
//	tags = ["errors", "style"]
//	rule = """
//	Always wrap errors with fmt.Errorf and %w.
//	"""
type Codec struct{}

// New creates a new TOML codec.
func New() *Codec {
	return &Codec{}
}

// Name returns the format name.
func (c *Codec) Name() string {
	return "toml"
}

// Extensions returns the file extensions handled.
func (c *Codec) Extensions() []string {
	return []string{".toml"}
}

// Decode parses a TOML document.
func (c *Codec) Decode(data []byte) (*domain.RuleDocument, error) {
	var fields map[string]any
	if err := toml.Unmarshal(data, &fields); err != nil {
		if strings.HasPrefix(err.Error(), "toml:") {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedDocument, err)
		}
		return nil, fmt.Errorf("%w: toml: %w", domain.ErrMalformedDocument, err)
	}
	return codecs.FromFields(fields)
}
