package domain

import (
	"context"
	"slices"
	"strings"
)

// Rule is the canonical loaded rule record.
// Rules are built by a parser and never mutated afterwards; stores keep
// and hand out copies.
type Rule struct {
	// ID is the unique key within the rule index.
	ID string

	// Description is the human-readable summary. Required.
	Description string

	// Language is an optional free-form tag (e.g. "go", "javascript").
	// Empty means unset.
	Language string

	// Tags are free-form labels in source order.
	Tags []string

	// Origin is the document locator the rule was parsed from.
	Origin string

	// Content resolves the rule's full text on demand.
	Content ContentRef
}

// Clone returns a copy whose Tags slice is independent of r's.
// The content reference is shared; content references are stateless.
func (r Rule) Clone() Rule {
	r.Tags = slices.Clone(r.Tags)
	return r
}

// HasLanguage reports whether the rule's language matches lang, ignoring case.
func (r Rule) HasLanguage(lang string) bool {
	return r.Language != "" && strings.EqualFold(r.Language, lang)
}

// HasTag reports whether the rule carries tag, ignoring case.
func (r Rule) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ContentRef is a lazily resolved pointer to where a rule's full text lives.
// Resolving is a separate, possibly failing I/O operation from loading metadata.
type ContentRef interface {
	// Kind identifies the reference variant (e.g. "file", "git").
	Kind() string

	// Location is the backing document locator.
	Location() string

	// Resolve reads the backing document and returns the rule body.
	// Every call re-reads; nothing is cached.
	Resolve(ctx context.Context) (string, error)
}

// RuleDocument is the decoded shape of one rule document.
// Codecs produce it; parsers turn it into a Rule.
type RuleDocument struct {
	ID          string
	Description string
	Language    string
	Tags        []string

	// Body is the full guidance text. It may be empty at parse time;
	// content resolution fails on an empty body, metadata loading does not.
	Body string
}
