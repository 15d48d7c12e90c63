// Package domain contains the core types for forge-search.
//
// These types are pure data with no infrastructure dependencies.
// They represent indexed documents, parsed queries, search results,
// and facet aggregations. Both driving adapters (CLI, TUI, MCP) and
// driven adapters (storage) communicate with the core through them.
package domain
