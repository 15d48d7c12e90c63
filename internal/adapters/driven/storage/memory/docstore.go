// Package memory provides an in-memory DocumentStore. It backs tests
// and ephemeral indexes that have no vault on disk.
package memory

import (
	"context"
	"sync"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
	"github.com/mikeyobrien/forge-search/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]domain.Document
	order []string
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]domain.Document),
	}
}

// Put stores or replaces a document keyed by its path.
func (s *DocumentStore) Put(doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.Path]; !ok {
		s.order = append(s.order, doc.Path)
	}
	s.docs[doc.Path] = doc
}

// Delete removes a document by path. Unknown paths are ignored.
func (s *DocumentStore) Delete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; !ok {
		return
	}
	delete(s.docs, path)
	for i, p := range s.order {
		if p == path {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// List enumerates every document in insertion order.
func (s *DocumentStore) List(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, path := range s.order {
		docs = append(docs, s.docs[path])
	}
	return docs, nil
}

// Read loads a single document by path.
func (s *DocumentStore) Read(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}
