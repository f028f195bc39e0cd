package parsers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/rulehub/internal/codecs"
	"github.com/custodia-labs/rulehub/internal/codecs/markdown"
	"github.com/custodia-labs/rulehub/internal/codecs/toml"
	"github.com/custodia-labs/rulehub/internal/codecs/yaml"
	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.RuleParser = (*Parser)(nil)

// Parser builds rules from documents using codecs keyed by extension.
type Parser struct {
	mu     sync.RWMutex
	codecs map[string]driven.RuleCodec
}

// New creates a parser with the given codecs registered.
func New(cs ...driven.RuleCodec) *Parser {
	p := &Parser{codecs: make(map[string]driven.RuleCodec)}
	for _, c := range cs {
		p.Register(c)
	}
	return p
}

// NewDefault creates a parser for YAML, TOML and Markdown documents.
func NewDefault() *Parser {
	return New(yaml.New(), toml.New(), markdown.New())
}

// Register adds a codec for each of its extensions.
// A later codec replaces an earlier one for the same extension.
func (p *Parser) Register(c driven.RuleCodec) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ext := range c.Extensions() {
		p.codecs[normaliseExt(ext)] = c
	}
}

// Extensions returns the registered extensions, sorted.
func (p *Parser) Extensions() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	exts := make([]string, 0, len(p.codecs))
	for ext := range p.codecs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether a codec is registered for the path's extension.
func (p *Parser) Supports(path string) bool {
	_, err := p.CodecFor(path)
	return err == nil
}

// CodecFor returns the codec registered for the path's extension.
func (p *Parser) CodecFor(path string) (driven.RuleCodec, error) {
	ext := normaliseExt(filepath.Ext(path))

	p.mu.RLock()
	c, ok := p.codecs[ext]
	p.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no codec for extension %q", domain.ErrMalformedDocument, ext)
	}
	return c, nil
}

// Parse reads the document at path and returns its rule metadata.
// The returned rule's content is a FileContent pointing back at path.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	codec, err := p.CodecFor(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rule, err := p.build(codec, data, path, &FileContent{Path: path, Codec: codec})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rule, nil
}

// ParseBytes builds a rule from an in-memory document. The name selects
// the codec by extension and becomes the rule's origin. The caller
// supplies the content reference.
func (p *Parser) ParseBytes(name string, data []byte, content domain.ContentRef) (*domain.Rule, error) {
	codec, err := p.CodecFor(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	rule, err := p.build(codec, data, name, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rule, nil
}

func (p *Parser) build(codec driven.RuleCodec, data []byte, origin string, content domain.ContentRef) (*domain.Rule, error) {
	doc, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}

	if err := Validate(doc); err != nil {
		return nil, err
	}

	return &domain.Rule{
		ID:          strings.TrimSpace(doc.ID),
		Description: doc.Description,
		Language:    doc.Language,
		Tags:        doc.Tags,
		Origin:      origin,
		Content:     content,
	}, nil
}

// Validate checks that a decoded document carries the required fields.
func Validate(doc *domain.RuleDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: empty document", domain.ErrMalformedDocument)
	}
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("%w: %s", domain.ErrMissingRequiredField, codecs.FieldID)
	}
	if strings.TrimSpace(doc.Description) == "" {
		return fmt.Errorf("%w: %s", domain.ErrMissingRequiredField, codecs.FieldDescription)
	}
	return nil
}

func normaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
