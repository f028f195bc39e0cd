package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

func TestListCmd_Table(t *testing.T) {
	ingest := &mockIngestService{}
	buf := setupServices(t, &mockRuleService{rules: sampleRules()}, ingest)

	err := run(t, "list")

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "go-errors")
	assert.Contains(t, out, "Wrap errors with context")
	assert.Contains(t, out, "errors, style")
	assert.Contains(t, out, "3 rule(s)")
	assert.Equal(t, 1, ingest.initCalls)
}

func TestListCmd_SkipsInitialiseWhenReady(t *testing.T) {
	ingest := &mockIngestService{ready: true}
	setupServices(t, &mockRuleService{rules: sampleRules()}, ingest)

	require.NoError(t, run(t, "list"))
	assert.Equal(t, 0, ingest.initCalls)
}

func TestListCmd_Filters(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "language", args: []string{"list", "--json", "--language", "GO"}, want: []string{"go-errors"}},
		{name: "tag", args: []string{"list", "--json", "--tag", "style"}, want: []string{"go-errors", "general"}},
		{name: "language and tag", args: []string{"list", "--json", "-l", "javascript", "-t", "style"}, want: []string{}},
		{name: "no filter", args: []string{"list", "--json"}, want: []string{"go-errors", "js-input", "general"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := setupServices(t, &mockRuleService{rules: sampleRules()}, &mockIngestService{ready: true})

			require.NoError(t, run(t, tt.args...))

			var got []ruleJSON
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestListCmd_Empty(t *testing.T) {
	buf := setupServices(t, &mockRuleService{}, &mockIngestService{ready: true})

	require.NoError(t, run(t, "list"))
	assert.Contains(t, buf.String(), "No rules found.")
}

func TestListCmd_ServiceError(t *testing.T) {
	setupServices(t, &mockRuleService{err: errors.New("boom")}, &mockIngestService{ready: true})

	err := run(t, "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing rules")
}

func TestListCmd_InitialiseError(t *testing.T) {
	setupServices(t, &mockRuleService{}, &mockIngestService{initErr: errors.New("disk on fire")})

	err := run(t, "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading rules")
}

func TestGetCmd(t *testing.T) {
	buf := setupServices(t, &mockRuleService{rules: sampleRules()}, &mockIngestService{ready: true})

	require.NoError(t, run(t, "get", "go-errors"))

	out := buf.String()
	assert.Contains(t, out, "go-errors")
	assert.Contains(t, out, "Description: Wrap errors with context")
	assert.Contains(t, out, "Language: go")
	assert.Contains(t, out, "Origin: rules/go-errors.yaml")
}

func TestGetCmd_JSON(t *testing.T) {
	buf := setupServices(t, &mockRuleService{rules: sampleRules()}, &mockIngestService{ready: true})

	require.NoError(t, run(t, "get", "general", "--json"))

	var got ruleJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "general", got.ID)
	assert.Empty(t, got.Language)
	assert.Equal(t, []string{"style"}, got.Tags)
}

func TestGetCmd_NotFound(t *testing.T) {
	setupServices(t, &mockRuleService{rules: sampleRules()}, &mockIngestService{ready: true})

	err := run(t, "get", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetCmd_RequiresID(t *testing.T) {
	setupServices(t, &mockRuleService{}, &mockIngestService{ready: true})

	assert.Error(t, run(t, "get"))
}

func TestContentCmd(t *testing.T) {
	rules := &mockRuleService{
		rules:   sampleRules(),
		content: map[string]string{"go-errors": "Always wrap errors with %w."},
	}
	buf := setupServices(t, rules, &mockIngestService{ready: true})

	require.NoError(t, run(t, "content", "go-errors"))
	assert.Equal(t, "Always wrap errors with %w.\n", buf.String())
}

func TestContentCmd_ResolutionError(t *testing.T) {
	setupServices(t, &mockRuleService{rules: sampleRules()}, &mockIngestService{ready: true})

	err := run(t, "content", "js-input")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(""))
	assert.Equal(t, "go", orDash("go"))
}
