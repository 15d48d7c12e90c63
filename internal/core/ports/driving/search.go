package driving

import (
	"context"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

// SearchService provides ranked, faceted search over the index.
type SearchService interface {
	// Search validates and executes a query against the index.
	// Invalid requests fail with a *domain.QueryError.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error)

	// UpdateDocument re-reads one document and updates the index in place.
	UpdateDocument(ctx context.Context, path string) error

	// RemoveDocument drops one document from the index.
	RemoveDocument(ctx context.Context, path string) error

	// Stats reports the document count and category breakdown.
	Stats() domain.IndexStats
}
