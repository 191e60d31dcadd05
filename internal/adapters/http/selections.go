package web

import (
	"sync"

	"github.com/google/uuid"

	"rollcall/internal/domain/selection"
)

// MaxSelections caps how many selections are held in memory at once.
const MaxSelections = 1024

// SelectionStore keeps named event selections in memory. Selections are
// per-viewer UI state and are lost on restart.
type SelectionStore struct {
	mu    sync.Mutex
	sets  map[string]selection.Set
	order []string // creation order, oldest first
}

// NewSelectionStore creates an empty SelectionStore.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{sets: make(map[string]selection.Set)}
}

// Create stores a new selection of ids and returns its id. When the store is
// full the oldest selection is evicted.
func (s *SelectionStore) Create(ids []string) (string, selection.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.order) >= MaxSelections {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.sets, oldest)
	}
	id := uuid.New().String()
	set := selection.New(ids...)
	s.sets[id] = set
	s.order = append(s.order, id)
	return id, set.Clone()
}

// Get returns a copy of the selection.
func (s *SelectionStore) Get(id string) (selection.Set, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[id]
	return set.Clone(), ok
}

// Toggle flips eventID in the selection and returns the result.
func (s *SelectionStore) Toggle(id, eventID string) (selection.Set, bool) {
	return s.update(id, func(set *selection.Set) { set.Toggle(eventID) })
}

// Replace sets the selection to exactly ids. Empty ids clears it.
func (s *SelectionStore) Replace(id string, ids []string) (selection.Set, bool) {
	return s.update(id, func(set *selection.Set) {
		if len(ids) == 0 {
			set.Clear()
			return
		}
		set.SelectAll(ids)
	})
}

func (s *SelectionStore) update(id string, fn func(*selection.Set)) (selection.Set, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[id]
	if !ok {
		return selection.Set{}, false
	}
	fn(&set)
	s.sets[id] = set
	return set.Clone(), true
}

// Delete removes the selection and reports whether it existed.
func (s *SelectionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[id]; !ok {
		return false
	}
	delete(s.sets, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of stored selections.
func (s *SelectionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}
