package mcp

import (
	"github.com/custodia-labs/rulehub/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Rules answers rule queries. Required.
	Rules driving.RuleService

	// Ingest reports load status. Optional; when nil the sources resource
	// is empty and the HTTP health check always reports ready.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Rules == nil {
		return ErrMissingRuleService
	}
	return nil
}
