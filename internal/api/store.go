package api

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/menta2k/sticker-kit/pkg/sticker"
)

// Store keeps the sticker sets being edited, keyed by UUID
type Store struct {
	mu     sync.RWMutex
	sets   map[string]*sticker.Set
	newSet func() *sticker.Set
}

// NewStore creates an empty store. newSet builds each new set.
func NewStore(newSet func() *sticker.Set) *Store {
	return &Store{
		sets:   make(map[string]*sticker.Set),
		newSet: newSet,
	}
}

// Create adds an empty set and returns its ID
func (s *Store) Create() (string, *sticker.Set) {
	id := uuid.NewString()
	set := s.newSet()

	s.mu.Lock()
	s.sets[id] = set
	s.mu.Unlock()
	return id, set
}

// Get looks up a set
func (s *Store) Get(id string) (*sticker.Set, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[id]
	return set, ok
}

// Delete drops a set and reports whether it existed
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sets[id]
	delete(s.sets, id)
	return ok
}

// IDs lists the stored set IDs in sorted order
func (s *Store) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sets))
	for id := range s.sets {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
