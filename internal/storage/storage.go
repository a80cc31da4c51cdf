package storage

import (
	"sort"
	"sync"

	"github.com/crewdocs/docmeta/internal/models"
)

// DocumentStore keeps processed documents in memory.
type DocumentStore struct {
	documents map[string]*models.DocumentRecord
	mu        sync.RWMutex
}

func New() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*models.DocumentRecord),
	}
}

func (s *DocumentStore) Get(id string) (*models.DocumentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, exists := s.documents[id]
	if !exists {
		return nil, false
	}
	cp := *doc
	return &cp, true
}

func (s *DocumentStore) Set(id string, doc *models.DocumentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *doc
	s.documents[id] = &cp
}

// List returns copies of all documents, oldest first.
func (s *DocumentStore) List() []*models.DocumentRecord {
	s.mu.RLock()
	result := make([]*models.DocumentRecord, 0, len(s.documents))
	for _, doc := range s.documents {
		cp := *doc
		result = append(result, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete removes a document and reports whether it existed.
func (s *DocumentStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.documents[id]
	delete(s.documents, id)
	return exists
}

func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
