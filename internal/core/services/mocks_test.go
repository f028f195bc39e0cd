package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driven"
)

// mockLoader implements driven.RuleLoader for testing.
type mockLoader struct {
	loaderType string
	aliases    []string
	rules      []domain.Rule
	err        error
	panicWith  any
	loadFunc   func(ctx context.Context, src domain.SourceDescriptor) ([]domain.Rule, error)

	mu    sync.Mutex
	calls []domain.SourceDescriptor
}

var _ driven.RuleLoader = (*mockLoader)(nil)

func (m *mockLoader) Type() string { return m.loaderType }

func (m *mockLoader) CanHandle(loaderType string) bool {
	if strings.EqualFold(loaderType, m.loaderType) {
		return true
	}
	for _, a := range m.aliases {
		if strings.EqualFold(loaderType, a) {
			return true
		}
	}
	return false
}

func (m *mockLoader) LoadRules(ctx context.Context, src domain.SourceDescriptor) ([]domain.Rule, error) {
	m.mu.Lock()
	m.calls = append(m.calls, src)
	m.mu.Unlock()

	if m.panicWith != nil {
		panic(m.panicWith)
	}
	if m.loadFunc != nil {
		return m.loadFunc(ctx, src)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.rules, nil
}

func (m *mockLoader) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockWatchLoader implements driven.WatchableLoader for testing.
type mockWatchLoader struct {
	mockLoader
	changes  []domain.RuleChange
	watchErr error
}

var _ driven.WatchableLoader = (*mockWatchLoader)(nil)

func (m *mockWatchLoader) Watch(ctx context.Context, _ domain.SourceDescriptor) (<-chan domain.RuleChange, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}

	ch := make(chan domain.RuleChange)
	go func() {
		defer close(ch)
		for _, c := range m.changes {
			select {
			case <-ctx.Done():
				return
			case ch <- c:
			}
		}
		<-ctx.Done()
	}()
	return ch, nil
}

// stubContent implements domain.ContentRef for testing.
type stubContent struct {
	text string
	err  error
}

func (s stubContent) Kind() string     { return "stub" }
func (s stubContent) Location() string { return "stub://" + s.text }

func (s stubContent) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.text, s.err
}

func testRule(id string) domain.Rule {
	return domain.Rule{
		ID:          id,
		Description: "rule " + id,
		Origin:      id + ".yaml",
		Content:     stubContent{text: "body of " + id},
	}
}

func ruleIDs(rules []domain.Rule) []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	return ids
}
