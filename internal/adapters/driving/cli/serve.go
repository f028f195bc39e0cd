package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rulehub/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rulehub/internal/adapters/driving/mcp"
)

var (
	servePort    int
	serveAddress string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol (MCP) server exposing the rule index.

By default the server communicates over stdio, which is what most MCP
clients expect. Use --port or --address (or transport = "http" in the
configuration) to serve Streamable HTTP instead.

Exposed tools:
  - list_rules: List rule metadata, optionally filtered by language or tag
  - get_rule: Get metadata for a single rule
  - get_rules_by_language: List rules for a language
  - get_rule_content: Get the full text of a rule

Exposed resources:
  - rulehub://rules: All rule metadata as JSON
  - rulehub://sources: Per-source status of the last load
  - rulehub://rules/{ruleId}: Rule content as text

Example Claude Desktop configuration:
  {
    "mcpServers": {
      "rulehub": {
        "command": "rulehub",
        "args": ["serve", "--config", "/path/to/rulehub.toml"]
      }
    }
  }`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "serve HTTP on localhost:PORT instead of stdio")
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "serve HTTP on this address instead of stdio")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "disable source watching even if configured")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := wire(); err != nil {
		return err
	}
	// Subscribe before the initial load so changes made while it runs are kept.
	if watchEnabled() {
		ingestService.Subscribe(ctx)
	}

	if err := loadIndex(ctx); err != nil {
		return err
	}
	if ruleService == nil {
		return fmt.Errorf("rule service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Rules:  ruleService,
		Ingest: ingestService,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if addr := serveAddr(); addr != "" {
		// stdout is free in HTTP mode.
		cmd.Printf("Starting MCP server on http://%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	// stdio mode: stdout carries the protocol, so nothing else may write there.
	return server.Run(ctx)
}

func watchEnabled() bool {
	return !serveNoWatch && appConfig != nil && appConfig.Ingest.Watch && ingestService != nil
}

// serveAddr returns the HTTP listen address, or "" for stdio.
func serveAddr() string {
	switch {
	case serveAddress != "":
		return serveAddress
	case servePort > 0:
		return fmt.Sprintf("localhost:%d", servePort)
	case appConfig != nil && appConfig.Server.Transport == file.TransportHTTP:
		return appConfig.Server.Address
	default:
		return ""
	}
}
