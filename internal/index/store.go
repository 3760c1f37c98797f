// Package index holds the canonical document set and the TF-IDF vector
// index built over it.
package index

import (
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
)

// Store is the authoritative, insertion-ordered document set.
// Every successful mutation bumps the version; the index compares its
// build version against the store version to decide freshness.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]document.Document
	order   []string
	version atomic.Uint64
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[string]document.Document)}
}

// Add stores a new document. Duplicate identifiers are rejected, the
// existing document is never overwritten.
func (s *Store) Add(doc document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID()]; exists {
		return domain.ErrAlreadyExists
	}
	s.docs[doc.ID()] = doc
	s.order = append(s.order, doc.ID())
	s.version.Add(1)
	return nil
}

// AddMany adds documents one by one, skipping empty and duplicate
// entries. Returns the number actually added.
func (s *Store) AddMany(docs []document.Document) int {
	added := 0
	for _, doc := range docs {
		if doc.ID() == "" || doc.Content() == "" {
			continue
		}
		if err := s.Add(doc); err == nil {
			added++
		}
	}
	return added
}

// Remove deletes a document by ID.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[id]; !exists {
		return domain.ErrDocumentNotFound
	}
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.version.Add(1)
	return nil
}

// Get returns a document by ID.
func (s *Store) Get(id string) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.docs[id]
	if !exists {
		return document.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Version returns the current mutation counter.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// all returns the documents in insertion order together with the store
// version they were read at.
func (s *Store) all() ([]document.Document, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]document.Document, 0, len(s.order))
	for _, id := range s.order {
		docs = append(docs, s.docs[id])
	}
	return docs, s.version.Load()
}
