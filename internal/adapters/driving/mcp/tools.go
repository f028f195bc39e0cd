package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

// RuleOutput is the metadata returned for one rule.
type RuleOutput struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Language    string   `json:"language,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Origin      string   `json:"origin,omitempty"`
}

// ListRulesInput is the input schema for the list_rules tool.
type ListRulesInput struct {
	Language string `json:"language,omitempty" jsonschema:"only return rules for this language (case-insensitive)"`
	Tag      string `json:"tag,omitempty" jsonschema:"only return rules carrying this tag (case-insensitive)"`
}

// ListRulesOutput is the output schema for the listing tools.
type ListRulesOutput struct {
	Rules []RuleOutput `json:"rules"`
	Count int          `json:"count"`
}

// GetRuleInput is the input schema for the get_rule and get_rule_content tools.
type GetRuleInput struct {
	RuleID string `json:"ruleId" jsonschema:"the rule identifier"`
}

// GetRulesByLanguageInput is the input schema for the get_rules_by_language tool.
type GetRulesByLanguageInput struct {
	Language string `json:"language" jsonschema:"the language to filter by, for example go or javascript"`
}

// RuleContentOutput is the output schema for the get_rule_content tool.
type RuleContentOutput struct {
	RuleID  string `json:"ruleId"`
	Content string `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_rules",
		Description: "List metadata for all loaded rules, optionally filtered by language or tag",
	}, s.handleListRules)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_rule",
		Description: "Get metadata for a specific rule by its ID",
	}, s.handleGetRule)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_rules_by_language",
		Description: "Get rule metadata for a specific language",
	}, s.handleGetRulesByLanguage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_rule_content",
		Description: "Get the full content of a specific rule by its ID",
	}, s.handleGetRuleContent)
}

// handleListRules handles the list_rules tool invocation.
func (s *Server) handleListRules(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRulesInput,
) (*mcp.CallToolResult, ListRulesOutput, error) {
	var (
		rules []domain.Rule
		err   error
	)
	if strings.TrimSpace(input.Language) != "" {
		rules, err = s.ports.Rules.ListByLanguage(ctx, input.Language)
	} else {
		rules, err = s.ports.Rules.ListMetadata(ctx)
	}
	if err != nil {
		return nil, ListRulesOutput{}, fmt.Errorf("listing rules: %w", err)
	}

	if tag := strings.TrimSpace(input.Tag); tag != "" {
		filtered := make([]domain.Rule, 0, len(rules))
		for _, r := range rules {
			if r.HasTag(tag) {
				filtered = append(filtered, r)
			}
		}
		rules = filtered
	}

	return nil, toListOutput(rules), nil
}

// handleGetRule handles the get_rule tool invocation.
func (s *Server) handleGetRule(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRuleInput,
) (*mcp.CallToolResult, RuleOutput, error) {
	rule, err := s.ports.Rules.GetMetadata(ctx, input.RuleID)
	if err != nil {
		return nil, RuleOutput{}, fmt.Errorf("getting rule: %w", err)
	}
	return nil, toRuleOutput(*rule), nil
}

// handleGetRulesByLanguage handles the get_rules_by_language tool invocation.
func (s *Server) handleGetRulesByLanguage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRulesByLanguageInput,
) (*mcp.CallToolResult, ListRulesOutput, error) {
	rules, err := s.ports.Rules.ListByLanguage(ctx, input.Language)
	if err != nil {
		return nil, ListRulesOutput{}, fmt.Errorf("listing rules by language: %w", err)
	}
	return nil, toListOutput(rules), nil
}

// handleGetRuleContent handles the get_rule_content tool invocation.
func (s *Server) handleGetRuleContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRuleInput,
) (*mcp.CallToolResult, RuleContentOutput, error) {
	content, err := s.ports.Rules.GetContent(ctx, input.RuleID)
	if err != nil {
		return nil, RuleContentOutput{}, fmt.Errorf("getting rule content: %w", err)
	}
	return nil, RuleContentOutput{RuleID: input.RuleID, Content: content}, nil
}

func toRuleOutput(r domain.Rule) RuleOutput {
	return RuleOutput{
		ID:          r.ID,
		Description: r.Description,
		Language:    r.Language,
		Tags:        r.Tags,
		Origin:      r.Origin,
	}
}

func toListOutput(rules []domain.Rule) ListRulesOutput {
	out := ListRulesOutput{
		Rules: make([]RuleOutput, len(rules)),
		Count: len(rules),
	}
	for i := range rules {
		out.Rules[i] = toRuleOutput(rules[i])
	}
	return out
}
