package engine

import "sync"

// ResultStore persists completed analysis results keyed by position,
// seat and mode. Implementations must be safe for concurrent use. The
// engine tolerates a nil store and simply re-searches.
type ResultStore interface {
	Get(key string) (*Result, bool)
	Put(key string, r *Result)
}

// MemoryStore is an in-process ResultStore backed by a map.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]Result
}

// NewMemoryStore creates an empty in-memory result store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]Result)}
}

// Get implements ResultStore.
func (s *MemoryStore) Get(key string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[key]
	if !ok {
		return nil, false
	}
	out := r
	return &out, true
}

// Put implements ResultStore. Later results for the same key overwrite
// earlier ones.
func (s *MemoryStore) Put(key string, r *Result) {
	if r == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = *r
}

// Len returns the number of stored results.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Flush discards every stored result.
func (s *MemoryStore) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make(map[string]Result)
}
