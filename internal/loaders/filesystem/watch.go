package filesystem

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/loaders"
	"github.com/custodia-labs/rulehub/internal/logger"
)

// Watch reports document changes under the configured directory until
// ctx is done. Only top-level files matching the patterns are reported.
func (l *Loader) Watch(ctx context.Context, src domain.SourceDescriptor) (<-chan domain.RuleChange, error) {
	dir, patterns, err := settings(src)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("%w: watch %s: %w", domain.ErrSourceUnavailable, dir, err)
	}

	changes := make(chan domain.RuleChange)

	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change := l.handleFsEvent(ctx, event, patterns)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", dir, err)
			}
		}
	}()

	return changes, nil
}

// handleFsEvent converts a filesystem event into a rule change.
// Returns nil for events that do not affect the index.
func (l *Loader) handleFsEvent(ctx context.Context, event fsnotify.Event, patterns []string) *domain.RuleChange {
	name := filepath.Base(event.Name)
	if loaders.IsHidden(name) || !loaders.Matches(name, patterns) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.RuleChange{Type: domain.ChangeRemoved, Origin: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		rule, err := l.parser.Parse(ctx, event.Name)
		if err != nil {
			// Editors often write in several steps; a later event retries.
			logger.Debug("watch: skipping %s: %v", event.Name, err)
			return nil
		}
		return &domain.RuleChange{Type: domain.ChangeUpserted, Origin: event.Name, Rule: rule}
	default:
		return nil
	}
}
