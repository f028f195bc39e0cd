package driven

import (
	"context"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// RuleStore is the rule metadata index.
// Implementations must be safe for concurrent use by many readers and writers.
type RuleStore interface {
	// Add inserts or replaces a rule by ID.
	// Returns domain.ErrInvalidRecord if the ID is empty or whitespace.
	Add(ctx context.Context, rule domain.Rule) error

	// AddAll inserts or replaces rules in order, skipping invalid records.
	// Returns the number of rules inserted.
	AddAll(ctx context.Context, rules []domain.Rule) int

	// Get retrieves a rule by ID. Blank IDs are never found.
	Get(ctx context.Context, id string) (domain.Rule, bool)

	// List returns a point-in-time snapshot of all rules, sorted by ID.
	List(ctx context.Context) []domain.Rule

	// Remove deletes a rule by ID. Returns false if it was not present.
	Remove(ctx context.Context, id string) bool

	// Len returns the number of indexed rules.
	Len() int
}
