// Package store holds the in-memory mirror of a user's collections as
// reactive stores that views subscribe to.
package store

import "sync"

// Store keeps the latest snapshot of a collection and notifies listeners
// whenever it is replaced.
type Store[T any] struct {
	mu        sync.RWMutex
	items     []T
	loaded    bool
	version   uint64
	nextID    uint64
	listeners map[uint64]func([]T)
}

func New[T any]() *Store[T] {
	return &Store[T]{listeners: make(map[uint64]func([]T))}
}

// Set replaces the snapshot wholesale and runs every listener to completion.
// Listeners run outside the lock and may read the store.
func (s *Store[T]) Set(items []T) {
	snapshot := make([]T, len(items))
	copy(snapshot, items)

	s.mu.Lock()
	s.items = snapshot
	s.loaded = true
	s.version++
	listeners := make([]func([]T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(s.Snapshot())
	}
}

// Snapshot returns a copy of the latest items.
func (s *Store[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Loaded reports whether any snapshot has arrived.
func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Version increases by one on every Set.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn for future snapshots. The returned cancel func is
// idempotent.
func (s *Store[T]) Subscribe(fn func([]T)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}
