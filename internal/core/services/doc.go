// Package services implements the forge-search core: the boolean query
// parser, the edit-distance fuzzy matcher, the simple and advanced
// relevance scorers, the facet generator, and the engine that ties
// them together over an injected DocumentStore.
//
// Everything here is a pure function of its inputs except Engine,
// which owns the in-memory index and guards it with a readers-writer
// lock.
package services
