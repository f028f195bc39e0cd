package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// mockRuleService is a mock implementation of driving.RuleService.
type mockRuleService struct {
	rules      []domain.Rule
	content    map[string]string
	err        error
	contentErr error

	lastLanguage string
}

func (m *mockRuleService) ListMetadata(_ context.Context) ([]domain.Rule, error) {
	return m.rules, m.err
}

func (m *mockRuleService) GetMetadata(_ context.Context, id string) (*domain.Rule, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.rules {
		if m.rules[i].ID == id {
			r := m.rules[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRuleService) ListByLanguage(_ context.Context, language string) ([]domain.Rule, error) {
	m.lastLanguage = language
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Rule
	for _, r := range m.rules {
		if strings.EqualFold(r.Language, language) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRuleService) ListByTag(_ context.Context, tag string) ([]domain.Rule, error) {
	var out []domain.Rule
	for _, r := range m.rules {
		if r.HasTag(tag) {
			out = append(out, r)
		}
	}
	return out, m.err
}

func (m *mockRuleService) GetContent(_ context.Context, id string) (string, error) {
	if m.contentErr != nil {
		return "", m.contentErr
	}
	c, ok := m.content[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return c, nil
}

func (m *mockRuleService) ResolveContent(ctx context.Context, rule domain.Rule) (string, error) {
	return m.GetContent(ctx, rule.ID)
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	ready  bool
	report *domain.LoadReport
}

func (m *mockIngestService) Initialise(_ context.Context) (*domain.LoadReport, error) {
	m.ready = true
	return m.report, nil
}

func (m *mockIngestService) Ready() bool                   { return m.ready }
func (m *mockIngestService) Report() *domain.LoadReport    { return m.report }
func (m *mockIngestService) Watch(_ context.Context) error { return nil }

func (m *mockIngestService) Subscribe(_ context.Context) <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func sampleRules() []domain.Rule {
	return []domain.Rule{
		{ID: "go-errors", Description: "Wrap errors", Language: "go", Tags: []string{"errors"}, Origin: "/rules/go-errors.yaml"},
		{ID: "js-input", Description: "Validate input", Language: "javascript", Tags: []string{"security", "validation"}},
		{ID: "general", Description: "Be kind"},
	}
}
