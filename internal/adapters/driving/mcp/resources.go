package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rulehub/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for rulehub resources.
	uriScheme = "rulehub://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "rules",
		Name:        "rules",
		Description: "Metadata for all loaded rules",
		MIMEType:    "application/json",
	}, s.handleRulesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Load status of each configured rule source",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "rules/{ruleId}",
		Name:        "rule-content",
		Description: "Full content of a specific rule",
		MIMEType:    "text/plain",
	}, s.handleRuleContentResource)
}

// handleRulesResource returns metadata for every rule.
func (s *Server) handleRulesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	rules, err := s.ports.Rules.ListMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}

	data, err := json.MarshalIndent(toListOutput(rules).Rules, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling rules: %w", err)
	}

	return jsonResult(req.Params.URI, data), nil
}

// sourceInfo is one entry of the sources resource.
type sourceInfo struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Label  string `json:"label"`
	Loader string `json:"loader,omitempty"`
	Status string `json:"status"`
	Rules  int    `json:"rules"`
	Error  string `json:"error,omitempty"`
}

// handleSourcesResource returns the last load report per source.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	var report *domain.LoadReport
	if s.ports.Ingest != nil {
		report = s.ports.Ingest.Report()
	}
	if report == nil {
		return jsonResult(req.Params.URI, []byte("[]")), nil
	}

	infos := make([]sourceInfo, len(report.Sources))
	for i, src := range report.Sources {
		infos[i] = sourceInfo{
			Index:  src.Index,
			Type:   src.Descriptor.LoaderType,
			Label:  src.Descriptor.Label(),
			Loader: src.Loader,
			Status: string(src.Status),
			Rules:  src.Rules,
		}
		if src.Err != nil {
			infos[i].Error = src.Err.Error()
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleRuleContentResource returns the full text of a rule.
func (s *Server) handleRuleContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ruleID := extractRuleID(req.Params.URI)
	if ruleID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Rules.GetContent(ctx, ruleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting rule content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractRuleID extracts the rule ID from a URI like rulehub://rules/{ruleId}.
func extractRuleID(uri string) string {
	const prefix = uriScheme + "rules/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil || strings.Contains(id, "/") {
		return ""
	}
	return id
}
