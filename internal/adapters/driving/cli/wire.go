package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/rulehub/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rulehub/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
	"github.com/custodia-labs/rulehub/internal/core/ports/driving"
	"github.com/custodia-labs/rulehub/internal/core/services"
	"github.com/custodia-labs/rulehub/internal/loaders/filesystem"
	"github.com/custodia-labs/rulehub/internal/loaders/git"
	"github.com/custodia-labs/rulehub/internal/loaders/github"
	"github.com/custodia-labs/rulehub/internal/logger"
	"github.com/custodia-labs/rulehub/internal/parsers"
)

// Services used by commands. Set by wire, or directly by tests.
var (
	ruleService   driving.RuleService
	ingestService driving.IngestService
	appConfig     *file.Config
)

// wire loads configuration and builds the services.
// It does nothing if services are already set.
func wire() error {
	if ruleService != nil && ingestService != nil {
		return nil
	}

	path := file.ResolvePath(configPath)
	cfg, err := file.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("Loaded configuration from %s: %d source(s)", path, len(cfg.Sources))

	interval, err := cfg.Ingest.Interval()
	if err != nil {
		return err
	}

	parser := parsers.NewDefault()
	loaders := []driven.RuleLoader{
		filesystem.New(parser),
		git.New(parser),
		github.New(parser),
	}

	orchestrator, err := services.NewLoaderOrchestrator(loaders, cfg.Descriptors(),
		services.WithConcurrency(cfg.Ingest.Concurrency))
	if err != nil {
		return err
	}

	store := memory.NewRuleStore()
	ingestService = services.NewIngestService(orchestrator, store, services.WithWatchInterval(interval))
	ruleService = services.NewRuleService(store)
	appConfig = cfg
	return nil
}

// loadIndex wires services and runs the initial load once.
func loadIndex(ctx context.Context) error {
	if err := wire(); err != nil {
		return err
	}
	if ingestService.Ready() {
		return nil
	}

	report, err := ingestService.Initialise(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("loading interrupted: %w", err)
		}
		return fmt.Errorf("loading rules: %w", err)
	}
	logger.Info("Loaded %d rule(s) (run %s)", len(report.Rules), report.RunID)
	return nil
}
