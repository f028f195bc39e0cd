package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
	"github.com/custodia-labs/rulehub/internal/core/ports/driving"
	"github.com/custodia-labs/rulehub/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultWatchInterval is the minimum spacing between applied change events.
const DefaultWatchInterval = 250 * time.Millisecond

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithWatchInterval bounds how often watch events are applied to the index.
// Zero or negative disables the limit.
func WithWatchInterval(d time.Duration) IngestOption {
	return func(s *IngestService) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// IngestService loads sources into the rule index and keeps it current.
type IngestService struct {
	orchestrator *LoaderOrchestrator
	store        driven.RuleStore
	limiter      *rate.Limiter

	mu     sync.RWMutex
	ready  bool
	report *domain.LoadReport

	// loaded is closed when the first Initialise completes.
	loaded     chan struct{}
	loadedOnce sync.Once
}

// NewIngestService creates a new ingest service.
func NewIngestService(orchestrator *LoaderOrchestrator, store driven.RuleStore, opts ...IngestOption) *IngestService {
	s := &IngestService{
		orchestrator: orchestrator,
		store:        store,
		limiter:      rate.NewLimiter(rate.Every(DefaultWatchInterval), 1),
		loaded:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialise loads every source and indexes the result.
// On cancellation the rules loaded so far are indexed, the report is
// returned and the error is ctx.Err().
func (s *IngestService) Initialise(ctx context.Context) (*domain.LoadReport, error) {
	report := s.orchestrator.Load(ctx)

	// Index even when cancelled; partial results are valid.
	added := s.store.AddAll(context.WithoutCancel(ctx), report.Rules)
	logger.Info("Indexed %d rule(s), %d unique", added, s.store.Len())

	s.mu.Lock()
	s.report = report
	s.ready = true
	s.mu.Unlock()
	s.loadedOnce.Do(func() { close(s.loaded) })

	return report, ctx.Err()
}

// Ready reports whether the initial load has completed.
func (s *IngestService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Report returns the most recent load report.
func (s *IngestService) Report() *domain.LoadReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Watch subscribes to every watchable source and applies changes until
// ctx is done. Returns nil on normal shutdown.
func (s *IngestService) Watch(ctx context.Context) error {
	<-s.Subscribe(ctx)
	return nil
}

// Subscribe starts watching every source whose loader supports it and
// returns once the subscriptions are in place. Changes are held until
// Initialise completes, so subscribing first loses nothing that changes
// during the initial load. Sources that cannot be watched are logged and
// ignored. The returned channel is closed when every watcher has stopped.
func (s *IngestService) Subscribe(ctx context.Context) <-chan struct{} {
	var g errgroup.Group
	watching := 0

	for i, src := range s.orchestrator.Sources() {
		loader, ok := s.orchestrator.Select(src.LoaderType)
		if !ok {
			continue
		}
		w, ok := loader.(driven.WatchableLoader)
		if !ok {
			logger.Debug("source %d (%s): loader %s does not support watching", i, src.Label(), loader.Type())
			continue
		}

		changes, err := w.Watch(ctx, src)
		if err != nil {
			logger.Warn("source %d (%s): watch failed: %v", i, src.Label(), err)
			continue
		}

		watching++
		logger.Info("Watching source %d (%s)", i, src.Label())
		g.Go(func() error {
			s.consume(ctx, changes)
			return nil
		})
	}

	done := make(chan struct{})
	if watching == 0 {
		logger.Info("No watchable sources configured")
		close(done)
		return done
	}

	go func() {
		defer close(done)
		_ = g.Wait()
	}()
	return done
}

func (s *IngestService) consume(ctx context.Context, changes <-chan domain.RuleChange) {
	select {
	case <-s.loaded:
	case <-ctx.Done():
	}
	for change := range changes {
		if err := s.limiter.Wait(ctx); err != nil {
			// Drain so the producer can observe cancellation and close.
			continue
		}
		s.Apply(ctx, change)
	}
}

// Apply applies a single change event to the index.
// An upsert replaces any rule previously loaded from the same origin.
// A removal deletes every rule loaded from that origin.
func (s *IngestService) Apply(ctx context.Context, change domain.RuleChange) {
	switch change.Type {
	case domain.ChangeUpserted:
		if change.Rule == nil {
			logger.Warn("upsert for %s carries no rule, ignoring", change.Origin)
			return
		}
		s.removeOrigin(ctx, change.Origin, change.Rule.ID)
		if err := s.store.Add(ctx, *change.Rule); err != nil {
			logger.Warn("upsert for %s: %v", change.Origin, err)
			return
		}
		logger.Debug("upserted rule %s from %s", change.Rule.ID, change.Origin)
	case domain.ChangeRemoved:
		n := s.removeOrigin(ctx, change.Origin, "")
		logger.Debug("removed %d rule(s) from %s", n, change.Origin)
	default:
		logger.Warn("unknown change type %s for %s", change.Type, change.Origin)
	}
}

// removeOrigin removes rules loaded from origin, except the one with keepID.
func (s *IngestService) removeOrigin(ctx context.Context, origin, keepID string) int {
	if origin == "" {
		return 0
	}
	n := 0
	for _, r := range s.store.List(ctx) {
		if r.Origin == origin && r.ID != keepID && s.store.Remove(ctx, r.ID) {
			n++
		}
	}
	return n
}
