// Package mcp provides an MCP (Model Context Protocol) server adapter for
// forge-search. It enables AI assistants like Claude to search a local
// markdown vault.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
