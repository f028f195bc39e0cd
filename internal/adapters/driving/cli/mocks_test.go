package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/custodia-labs/rulehub/internal/core/domain"
	"github.com/custodia-labs/rulehub/internal/core/ports/driving"
)

var _ driving.RuleService = (*mockRuleService)(nil)
var _ driving.IngestService = (*mockIngestService)(nil)

type mockRuleService struct {
	rules   []domain.Rule
	content map[string]string
	err     error
}

func (m *mockRuleService) ListMetadata(_ context.Context) ([]domain.Rule, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rules, nil
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
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Rule
	for _, r := range m.rules {
		if r.HasLanguage(language) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRuleService) ListByTag(_ context.Context, tag string) ([]domain.Rule, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Rule
	for _, r := range m.rules {
		if r.HasTag(tag) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRuleService) GetContent(ctx context.Context, id string) (string, error) {
	rule, err := m.GetMetadata(ctx, id)
	if err != nil {
		return "", err
	}
	return m.ResolveContent(ctx, *rule)
}

func (m *mockRuleService) ResolveContent(_ context.Context, rule domain.Rule) (string, error) {
	text, ok := m.content[rule.ID]
	if !ok {
		return "", fmt.Errorf("%w: no content for %s", domain.ErrNotFound, rule.ID)
	}
	return text, nil
}

type mockIngestService struct {
	ready     bool
	report    *domain.LoadReport
	initErr   error
	initCalls int
}

func (m *mockIngestService) Initialise(_ context.Context) (*domain.LoadReport, error) {
	m.initCalls++
	m.ready = true
	if m.report == nil {
		m.report = &domain.LoadReport{RunID: "test-run"}
	}
	return m.report, m.initErr
}

func (m *mockIngestService) Ready() bool                     { return m.ready }
func (m *mockIngestService) Report() *domain.LoadReport      { return m.report }
func (m *mockIngestService) Watch(ctx context.Context) error { <-ctx.Done(); return nil }

func (m *mockIngestService) Subscribe(_ context.Context) <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func sampleRules() []domain.Rule {
	return []domain.Rule{
		{ID: "go-errors", Description: "Wrap errors with context", Language: "go", Tags: []string{"errors", "style"}, Origin: "rules/go-errors.yaml"},
		{ID: "js-input", Description: "Validate user input", Language: "javascript", Tags: []string{"security"}, Origin: "rules/js-input.yaml"},
		{ID: "general", Description: "Keep functions small", Tags: []string{"style"}},
	}
}

// setupServices installs mocks as the command services and captures output.
func setupServices(t *testing.T, rules *mockRuleService, ingest *mockIngestService) *bytes.Buffer {
	t.Helper()

	origRules, origIngest, origConfig := ruleService, ingestService, appConfig
	ruleService, ingestService, appConfig = rules, ingest, nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	t.Cleanup(func() {
		ruleService, ingestService, appConfig = origRules, origIngest, origConfig
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})
	return buf
}

// resetFlags clears flag variables left over from earlier executions.
func resetFlags() {
	configPath = ""
	verbose = false
	listLanguage, listTag = "", ""
	listJSON, getJSON, sourcesJSON = false, false, false
	servePort, serveAddress, serveNoWatch = 0, "", false
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}
