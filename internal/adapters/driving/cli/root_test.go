package cli

import (
	"context"
	"errors"
	"time"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
	"github.com/mikeyobrien/forge-search/internal/core/ports/driving"
)

// stubSearchService is a canned driving.SearchService for command
// tests. It records the last query so tests can assert on flag
// mapping.
type stubSearchService struct {
	response  *domain.SearchResponse
	stats     domain.IndexStats
	err       error
	lastQuery domain.SearchQuery
}

var _ driving.SearchService = (*stubSearchService)(nil)

func (s *stubSearchService) Search(
	_ context.Context,
	query domain.SearchQuery,
) (*domain.SearchResponse, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	if s.response != nil {
		return s.response, nil
	}
	return &domain.SearchResponse{}, nil
}

func (s *stubSearchService) UpdateDocument(_ context.Context, _ string) error {
	return s.err
}

func (s *stubSearchService) RemoveDocument(_ context.Context, _ string) error {
	return s.err
}

func (s *stubSearchService) Stats() domain.IndexStats {
	return s.stats
}

// setupTestServices injects a stub search service with one canned
// result and returns a cleanup restoring the previous wiring.
// PersistentPreRunE skips real service construction when a service
// is already present.
func setupTestServices() func() {
	stub := &stubSearchService{
		response: &domain.SearchResponse{
			Results: []domain.SearchResult{
				{
					Path:           "projects/search.md",
					Title:          "Search Engine",
					Category:       domain.CategoryProjects,
					Tags:           []string{"golang"},
					RelevanceScore: 87.5,
				},
			},
			TotalCount:    1,
			ExecutionTime: 2 * time.Millisecond,
		},
		stats: domain.IndexStats{
			DocumentCount: 1,
			Categories:    map[domain.Category]int{domain.CategoryProjects: 1},
		},
	}
	return setupStubService(stub)
}

// setupStubService injects an arbitrary stub and returns a cleanup.
func setupStubService(stub driving.SearchService) func() {
	oldService := searchService
	searchService = stub
	return func() {
		searchService = oldService
	}
}

// errServiceUnavailable backs the failure-path tests.
var errServiceUnavailable = errors.New("index unavailable")
