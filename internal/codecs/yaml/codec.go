// Package yaml decodes YAML rule documents.
package yaml

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/rulehub/internal/codecs"
	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.RuleCodec = (*Codec)(nil)

// Codec decodes YAML rule documents.
//
// Example document:
//
//	id: input-validation
//	description: Validates user input by checking for empty values
//	language: javascript
//	tags:
//	  - validation
//	  - security
//	rule: |
//	  function validateInput(input) {
//	    if (!input) throw new Error("Input required");
//	    return input.trim();
//	  }
type Codec struct{}

// New creates a new YAML codec.
func New() *Codec {
	return &Codec{}
}

// Name returns the format name.
func (c *Codec) Name() string {
	return "yaml"
}

// Extensions returns the file extensions handled.
func (c *Codec) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// Decode parses a YAML document.
func (c *Codec) Decode(data []byte) (*domain.RuleDocument, error) {
	fields, err := DecodeFields(data)
	if err != nil {
		return nil, err
	}
	return codecs.FromFields(fields)
}

// DecodeFields parses a YAML mapping into generic fields.
// Shared with the markdown codec for front matter.
func DecodeFields(data []byte) (map[string]any, error) {
	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		// yaml.v3 errors already carry a "yaml:" prefix.
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedDocument, err)
	}
	return fields, nil
}
