package codecs

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

// Recognised document field names, after normalisation.
const (
	FieldID          = "id"
	FieldDescription = "description"
	FieldLanguage    = "language"
	FieldTags        = "tags"
	FieldRule        = "rule"
	FieldBody        = "body"
)

// NormaliseKey lower-cases a field name so "ID", "Id" and "id" are equal.
func NormaliseKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// FromFields builds a RuleDocument from a decoded key/value mapping.
// Unrecognised keys are ignored. A recognised key holding a value of the
// wrong type, or given twice under different casing, is
// domain.ErrMalformedDocument. Missing keys are not an error here; the
// parser decides which fields are required.
//
// The body is "rule" when that is non-empty, otherwise "body".
func FromFields(fields map[string]any) (*domain.RuleDocument, error) {
	known := make(map[string]string, len(fields))
	for key := range fields {
		name := NormaliseKey(key)
		switch name {
		case FieldID, FieldDescription, FieldLanguage, FieldTags, FieldRule, FieldBody:
		default:
			continue
		}
		if prev, dup := known[name]; dup {
			return nil, fmt.Errorf("%w: field %q given twice (%q and %q)",
				domain.ErrMalformedDocument, name, prev, key)
		}
		known[name] = key
	}

	doc := &domain.RuleDocument{}
	var rule, body string
	var err error

	str := func(name string) string {
		key, ok := known[name]
		if !ok || err != nil {
			return ""
		}
		var v string
		v, err = stringField(key, fields[key])
		return v
	}

	doc.ID = str(FieldID)
	doc.Description = str(FieldDescription)
	doc.Language = str(FieldLanguage)
	rule = str(FieldRule)
	body = str(FieldBody)
	if err != nil {
		return nil, err
	}
	if key, ok := known[FieldTags]; ok {
		if doc.Tags, err = tagsField(key, fields[key]); err != nil {
			return nil, err
		}
	}

	doc.Body = body
	if strings.TrimSpace(rule) != "" {
		doc.Body = rule
	}
	return doc, nil
}

// Body decodes data with codec and returns the rule body.
// An empty body is domain.ErrMalformedDocument.
func Body(codec driven.RuleCodec, data []byte) (string, error) {
	doc, err := codec.Decode(data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Body) == "" {
		return "", fmt.Errorf("%w: missing %q field", domain.ErrMalformedDocument, FieldRule)
	}
	return doc.Body, nil
}

func stringField(key string, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%w: field %q must be a string, got %T", domain.ErrMalformedDocument, key, value)
	}
}

func tagsField(key string, value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		tags := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q[%d] must be a string, got %T",
					domain.ErrMalformedDocument, key, i, item)
			}
			tags = append(tags, s)
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("%w: field %q must be a list of strings, got %T",
			domain.ErrMalformedDocument, key, value)
	}
}
