// Package mcp provides an MCP (Model Context Protocol) server adapter for rulehub.
// It lets AI assistants list indexed rules and fetch their full text.
package mcp

import "errors"

// ErrMissingRuleService is returned when the rule service is not provided.
var ErrMissingRuleService = errors.New("mcp: rule service is required")
