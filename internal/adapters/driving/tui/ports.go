// Package tui provides an interactive terminal user interface for clearpath.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/clearpath-labs/clearpath/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval ranks passages. Required.
	Retrieval driving.RetrievalService

	// Router classifies questions. Required.
	Router driving.RouterService

	// Query answers questions. Optional; the ask view reports the LLM as
	// unavailable without it.
	Query driving.QueryService

	// Index reports and rebuilds the index. Optional.
	Index driving.IndexService

	// ResultAction copies and opens retrieved passages. Optional.
	ResultAction driving.ResultActionService

	// Settings exposes application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(retrieval driving.RetrievalService, router driving.RouterService) *Ports {
	return &Ports{
		Retrieval: retrieval,
		Router:    router,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Router == nil {
		return ErrMissingRouterService
	}
	return nil
}
