package driven

import (
	"context"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// RuleLoader enumerates the documents behind one kind of source descriptor
// and parses each into a Rule.
// Each loader kind (directory, git) implements this interface.
type RuleLoader interface {
	// Type returns the loader type identifier this loader claims.
	Type() string

	// CanHandle reports whether the loader accepts the candidate loader type.
	// Matching is case-insensitive and may include aliases.
	CanHandle(loaderType string) bool

	// LoadRules loads every rule behind the descriptor.
	// Returns domain.ErrInvalidSettings for unusable settings and
	// domain.ErrSourceUnavailable when the backing location cannot be reached.
	// Documents that fail to parse are skipped, not returned as errors.
	// On cancellation the rules accumulated so far are returned with a nil error.
	LoadRules(ctx context.Context, source domain.SourceDescriptor) ([]domain.Rule, error)
}

// WatchableLoader is a RuleLoader that can report changes after the initial load.
type WatchableLoader interface {
	RuleLoader

	// Watch listens for document changes behind the descriptor.
	// The returned channel is closed when ctx is cancelled.
	Watch(ctx context.Context, source domain.SourceDescriptor) (<-chan domain.RuleChange, error)
}
