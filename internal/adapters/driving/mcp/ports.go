package mcp

import (
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval ranks chunks against a query.
	Retrieval driving.RetrievalService

	// Router classifies queries.
	Router driving.RouterService

	// Query answers questions. Optional; the ask tool is omitted without it.
	Query driving.QueryService

	// Index reports index status. Optional.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Router == nil {
		return ErrMissingRouterService
	}
	return nil
}
