package driven

import (
	"context"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

// DocumentStore provides access to the knowledge-base documents.
// The engine never touches the filesystem directly; the vault adapter
// does the walking, frontmatter parsing, and markdown stripping.
type DocumentStore interface {
	// List enumerates every document for a full index build.
	List(ctx context.Context) ([]domain.Document, error)

	// Read loads a single document by its vault-relative path.
	// Returns domain.ErrNotFound when the path does not exist.
	Read(ctx context.Context, path string) (*domain.Document, error)
}
