// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// The search engine depends on these interfaces, and storage adapters
// implement them.
//
//   - DocumentStore: enumerates and reads knowledge-base documents.
//     Implemented by the filesystem vault store in production and the
//     in-memory store in tests.
//   - ConfigStore: application configuration.
//
// Import rules: this package may import domain only, never an adapter.
package driven
