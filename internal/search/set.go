package search

import (
	"sync"

	"github.com/google/uuid"
)

// Set holds one resolver per draft line, keyed by the line's stable id.
// Keying by id instead of position means removing a line can never hand a
// surviving row another row's search state.
type Set[T any] struct {
	mu      sync.Mutex
	m       map[uuid.UUID]*Resolver[T]
	factory func() *Resolver[T]
}

// NewSet constructs a Set that builds resolvers on demand.
func NewSet[T any](factory func() *Resolver[T]) *Set[T] {
	return &Set[T]{
		m:       make(map[uuid.UUID]*Resolver[T]),
		factory: factory,
	}
}

// For returns the resolver for a line, creating it on first use.
func (s *Set[T]) For(id uuid.UUID) *Resolver[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[id]
	if !ok {
		r = s.factory()
		s.m[id] = r
	}
	return r
}

// Drop releases the resolver for a removed line.
func (s *Set[T]) Drop(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

// Has reports whether a resolver exists for the line.
func (s *Set[T]) Has(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	return ok
}

// Len returns the number of live resolvers.
func (s *Set[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
