package mcp

import (
	"github.com/mikeyobrien/forge-search/internal/core/ports/driven"
	"github.com/mikeyobrien/forge-search/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Documents provides raw document access for resource reads.
	// Optional; document resources return not-found without it.
	Documents driven.DocumentStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
