package driving

import (
	"context"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// RuleService is the query surface over the rule index.
type RuleService interface {
	// ListMetadata returns metadata for every indexed rule.
	ListMetadata(ctx context.Context) ([]domain.Rule, error)

	// GetMetadata retrieves one rule by ID.
	// Returns domain.ErrNotFound if no rule has that ID.
	GetMetadata(ctx context.Context, id string) (*domain.Rule, error)

	// ListByLanguage returns rules whose language matches, ignoring case.
	ListByLanguage(ctx context.Context, language string) ([]domain.Rule, error)

	// ListByTag returns rules carrying the tag, ignoring case.
	ListByTag(ctx context.Context, tag string) ([]domain.Rule, error)

	// GetContent resolves the full text of the rule with the given ID.
	GetContent(ctx context.Context, id string) (string, error)

	// ResolveContent resolves the full text of a rule.
	// Resolution errors are returned unchanged to the caller.
	ResolveContent(ctx context.Context, rule domain.Rule) (string, error)
}
