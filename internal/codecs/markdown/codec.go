// Package markdown decodes Markdown rule documents with YAML front matter.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/custodia-labs/rulehub/internal/codecs"
	yamlcodec "github.com/custodia-labs/rulehub/internal/codecs/yaml"
	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.RuleCodec = (*Codec)(nil)

const delimiter = "---"

// Codec decodes Markdown rule documents.
// Metadata comes from the optional front matter; the rule body is the
// Markdown after it. A "rule" key in the front matter is used only when the
// Markdown body is empty.
//
// Example document:
//
//	---
//	id: table-tests
//	description: Prefer table-driven tests
//	language: go
//	tags: [testing]
//	---
//	# Table-driven tests
//
//	Group cases in a slice of structs and loop with t.Run.
type Codec struct{}

// New creates a new Markdown codec.
func New() *Codec {
	return &Codec{}
}

// Name returns the format name.
func (c *Codec) Name() string {
	return "markdown"
}

// Extensions returns the file extensions handled.
func (c *Codec) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Decode parses the front matter and body.
func (c *Codec) Decode(data []byte) (*domain.RuleDocument, error) {
	front, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, err
	}

	fields, err := yamlcodec.DecodeFields(front)
	if err != nil {
		return nil, err
	}

	doc, err := codecs.FromFields(fields)
	if err != nil {
		return nil, err
	}

	if text := strings.TrimSpace(body); text != "" {
		doc.Body = text
	}
	return doc, nil
}

// splitFrontMatter separates a leading "---" delimited block from the rest.
func splitFrontMatter(data []byte) (front []byte, body string, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(text, delimiter+"\n") {
		return nil, text, nil
	}
	rest := text[len(delimiter)+1:]

	// The closing delimiter may be the very first line (empty front matter).
	if strings.HasPrefix(rest, delimiter+"\n") || rest == delimiter {
		return nil, strings.TrimPrefix(strings.TrimPrefix(rest, delimiter), "\n"), nil
	}

	end := strings.Index(rest, "\n"+delimiter+"\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n"+delimiter) {
			end = len(rest) - len(delimiter) - 1
		} else {
			return nil, "", fmt.Errorf("%w: markdown: unterminated front matter", domain.ErrMalformedDocument)
		}
	}

	front = []byte(rest[:end])
	body = rest[end+1+len(delimiter):]
	body = strings.TrimPrefix(body, "\n")
	return front, body, nil
}
