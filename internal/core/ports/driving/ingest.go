package driving

import (
	"context"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// IngestService loads configured sources into the rule index.
type IngestService interface {
	// Initialise runs one full ingestion and blocks until it completes.
	// The query surface is ready once it returns.
	Initialise(ctx context.Context) (*domain.LoadReport, error)

	// Ready reports whether Initialise has completed.
	Ready() bool

	// Report returns the most recent load report, or nil before Initialise.
	Report() *domain.LoadReport

	// Watch applies change events from watchable loaders until ctx is done.
	Watch(ctx context.Context) error

	// Subscribe starts watching and returns once subscriptions are in place.
	// Changes are held until Initialise completes. The returned channel is
	// closed when every watcher has stopped.
	Subscribe(ctx context.Context) <-chan struct{}
}
