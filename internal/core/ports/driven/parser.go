package driven

import (
	"context"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// RuleParser turns one document into one Rule.
type RuleParser interface {
	// Parse reads the document at path and builds a Rule whose content
	// reference points back at path. The rule body is not embedded.
	// Returns domain.ErrNotFound, domain.ErrMalformedDocument or
	// domain.ErrMissingRequiredField on failure.
	Parse(ctx context.Context, path string) (*domain.Rule, error)
}

// RuleCodec decodes one document format into a RuleDocument.
// Each format (YAML, TOML, Markdown) implements this interface.
type RuleCodec interface {
	// Name returns the format name (e.g. "yaml").
	Name() string

	// Extensions returns the file extensions handled, with leading dot.
	Extensions() []string

	// Decode parses raw document bytes.
	// Returns domain.ErrMalformedDocument if the bytes cannot be decoded.
	// Required-field checks are the parser's job, not the codec's.
	Decode(data []byte) (*domain.RuleDocument, error)
}
