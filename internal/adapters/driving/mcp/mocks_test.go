package mcp

import (
	"context"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
// It records the last query so tests can assert on the mapping from
// tool input to search query.
type mockSearchService struct {
	response  *domain.SearchResponse
	stats     domain.IndexStats
	err       error
	lastQuery domain.SearchQuery
}

func (m *mockSearchService) Search(
	_ context.Context,
	query domain.SearchQuery,
) (*domain.SearchResponse, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &domain.SearchResponse{}, nil
}

func (m *mockSearchService) UpdateDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSearchService) RemoveDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSearchService) Stats() domain.IndexStats {
	return m.stats
}

// mockDocumentStore is a mock implementation of driven.DocumentStore.
type mockDocumentStore struct {
	docs []domain.Document
	doc  *domain.Document
	err  error
}

func (m *mockDocumentStore) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentStore) Read(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}
