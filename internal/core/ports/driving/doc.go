// Package driving defines the interfaces external actors use to call
// INTO the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI, TUI, and MCP adapters depend on these interfaces; the
// services package implements them.
package driving
