package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/model"
)

// MemStore keeps documents in a mutex protected map. This is the
// default backend, state is lost on restart.
type MemStore struct {
	mu    sync.RWMutex
	store map[string]*model.Document
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		store: make(map[string]*model.Document),
	}
}

// Get returns the document stored at key
func (s *MemStore) Get(ctx context.Context, key string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.store[key]
	if !ok {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDNotFound.Title, "DID not found")
	}
	return doc, nil
}

// Create stores a document at a previously empty key
func (s *MemStore) Create(ctx context.Context, key string, doc *model.Document) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store[key]; ok {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDExists.Title, fmt.Sprintf("DID already exists: %s", doc.ID))
	}
	s.store[key] = doc
	return doc, nil
}

// Update replaces the document at an existing key
func (s *MemStore) Update(ctx context.Context, key string, doc *model.Document) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store[key]; !ok {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDNotFound.Title, "DID not found")
	}
	s.store[key] = doc
	return doc, nil
}

// Remove deletes the document at key and returns it
func (s *MemStore) Remove(ctx context.Context, key string) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.store[key]
	if !ok {
		return nil, helpers.NewErrorDetails(helpers.ErrDIDNotFound.Title, "DID not found")
	}
	delete(s.store, key)
	return doc, nil
}
