package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
	"github.com/custodia-labs/rulehub/internal/logger"
)

// OrchestratorOption configures a LoaderOrchestrator.
type OrchestratorOption func(*LoaderOrchestrator)

// WithConcurrency loads up to n sources at once. Values below 1 mean sequential.
func WithConcurrency(n int) OrchestratorOption {
	return func(o *LoaderOrchestrator) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}

// LoaderOrchestrator loads rules from every configured source.
// A failing source never stops the others; see LoadReport for per-source outcomes.
type LoaderOrchestrator struct {
	loaders     []driven.RuleLoader
	sources     []domain.SourceDescriptor
	concurrency int
}

// NewLoaderOrchestrator creates an orchestrator over the given loaders and sources.
// Loaders are consulted in order; the first whose CanHandle accepts a
// source's type handles it. Returns domain.ErrNoSources if sources is empty.
func NewLoaderOrchestrator(
	loaders []driven.RuleLoader,
	sources []domain.SourceDescriptor,
	opts ...OrchestratorOption,
) (*LoaderOrchestrator, error) {
	if len(sources) == 0 {
		return nil, domain.ErrNoSources
	}

	o := &LoaderOrchestrator{
		loaders:     append([]driven.RuleLoader(nil), loaders...),
		sources:     append([]domain.SourceDescriptor(nil), sources...),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Sources returns the configured source descriptors in order.
func (o *LoaderOrchestrator) Sources() []domain.SourceDescriptor {
	return append([]domain.SourceDescriptor(nil), o.sources...)
}

// Loaders returns the registered loaders in order.
func (o *LoaderOrchestrator) Loaders() []driven.RuleLoader {
	return append([]driven.RuleLoader(nil), o.loaders...)
}

// Select returns the first loader that can handle loaderType.
func (o *LoaderOrchestrator) Select(loaderType string) (driven.RuleLoader, bool) {
	for _, l := range o.loaders {
		if l.CanHandle(loaderType) {
			return l, true
		}
	}
	return nil, false
}

// LoadAll loads every source and returns the aggregated rules in
// source-then-document order. Duplicate IDs are kept.
func (o *LoaderOrchestrator) LoadAll(ctx context.Context) []domain.Rule {
	return o.Load(ctx).Rules
}

// Load loads every source and reports the outcome of each.
// Cancellation stops further sources from starting; rules already loaded
// are still returned.
func (o *LoaderOrchestrator) Load(ctx context.Context) *domain.LoadReport {
	report := &domain.LoadReport{
		RunID:   uuid.NewString(),
		Sources: make([]domain.SourceReport, len(o.sources)),
	}
	results := make([][]domain.Rule, len(o.sources))

	logger.Section("Loading rules")
	logger.Debug("run %s: %d source(s), %d loader(s), concurrency %d",
		report.RunID, len(o.sources), len(o.loaders), o.concurrency)

	if o.concurrency <= 1 {
		for i, src := range o.sources {
			if ctx.Err() != nil {
				report.Sources[i] = cancelledReport(i, src, ctx.Err())
				continue
			}
			results[i], report.Sources[i] = o.loadSource(ctx, report.RunID, i, src)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.concurrency)
		for i, src := range o.sources {
			g.Go(func() error {
				if ctx.Err() != nil {
					report.Sources[i] = cancelledReport(i, src, ctx.Err())
					return nil
				}
				results[i], report.Sources[i] = o.loadSource(ctx, report.RunID, i, src)
				return nil
			})
		}
		_ = g.Wait()
	}

	total := 0
	for _, rules := range results {
		total += len(rules)
	}
	report.Rules = make([]domain.Rule, 0, total)
	for _, rules := range results {
		report.Rules = append(report.Rules, rules...)
	}

	logger.Info("run %s: loaded %d rule(s) from %d source(s), %d skipped, %d failed, %d cancelled",
		report.RunID, len(report.Rules), report.Count(domain.SourceLoaded),
		report.Count(domain.SourceSkipped), report.Count(domain.SourceFailed),
		report.Count(domain.SourceCancelled))

	return report
}

// loadSource runs one source through its loader. Errors and panics are
// confined to the returned report.
func (o *LoaderOrchestrator) loadSource(
	ctx context.Context,
	runID string,
	index int,
	src domain.SourceDescriptor,
) (rules []domain.Rule, rep domain.SourceReport) {
	rep = domain.SourceReport{Index: index, Descriptor: src}

	// Installed before selection so a panicking CanHandle is confined too.
	defer func() {
		if r := recover(); r != nil {
			rules = nil
			rep.Status = domain.SourceFailed
			rep.Rules = 0
			if rep.Loader != "" {
				rep.Err = fmt.Errorf("loader %s panicked: %v", rep.Loader, r)
			} else {
				rep.Err = fmt.Errorf("loader selection panicked: %v", r)
			}
			logger.Error("run %s: source %d (%s): %v", runID, index, src.Label(), rep.Err)
			logger.Debug("%s", strings.TrimSpace(string(debug.Stack())))
		}
	}()

	loader, ok := o.Select(src.LoaderType)
	if !ok {
		rep.Status = domain.SourceSkipped
		rep.Err = fmt.Errorf("%w: no loader for %q", domain.ErrUnsupportedType, src.LoaderType)
		logger.Warn("run %s: source %d: no loader handles type %q, skipping", runID, index, src.LoaderType)
		return nil, rep
	}
	rep.Loader = loader.Type()

	rules, err := loader.LoadRules(ctx, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			rep.Status = domain.SourceCancelled
			rep.Err = err
			logger.Debug("run %s: source %d (%s) cancelled", runID, index, src.Label())
			return nil, rep
		}
		rep.Status = domain.SourceFailed
		rep.Err = err
		logger.Warn("run %s: source %d (%s) failed: %v", runID, index, src.Label(), err)
		return nil, rep
	}

	rep.Rules = len(rules)
	rep.Status = domain.SourceLoaded
	if ctx.Err() != nil {
		// Loaders return partial results on cancellation.
		rep.Status = domain.SourceCancelled
	}
	logger.Debug("run %s: source %d (%s) via %s: %d rule(s)",
		runID, index, src.Label(), loader.Type(), len(rules))
	return rules, rep
}

func cancelledReport(index int, src domain.SourceDescriptor, err error) domain.SourceReport {
	return domain.SourceReport{
		Index:      index,
		Descriptor: src,
		Status:     domain.SourceCancelled,
		Err:        err,
	}
}
