package statestore

import (
	"context"
	"sync"
)

// MemoryStore keeps state in process. It does not survive restarts.
type MemoryStore[T any] struct {
	mu     sync.RWMutex
	values map[string]T
	subs   *listeners[T]
	keys   keyLocks
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{
		values: make(map[string]T),
		subs:   newListeners[T](),
	}
}

func (s *MemoryStore[T]) Get(_ context.Context, key string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore[T]) Set(ctx context.Context, key string, v T) error {
	unlock := s.keys.lock(key)
	defer unlock()
	return s.put(ctx, key, v)
}

// Update applies fn while holding the key's lock, so concurrent updates of one key
// run one after another.
func (s *MemoryStore[T]) Update(ctx context.Context, key string, fallback T, fn func(T) (T, error)) (T, error) {
	unlock := s.keys.lock(key)
	defer unlock()
	return readModifyWrite(ctx, s.Get, s.put, key, fallback, fn)
}

func (s *MemoryStore[T]) put(_ context.Context, key string, v T) error {
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()

	s.subs.notify(key, v)
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, key string) error {
	unlock := s.keys.lock(key)
	defer unlock()

	s.mu.Lock()
	_, existed := s.values[key]
	delete(s.values, key)
	s.mu.Unlock()

	if existed {
		var zero T
		s.subs.notify(key, zero)
	}
	return nil
}

func (s *MemoryStore[T]) Subscribe(fn Listener[T]) func() {
	return s.subs.add(fn)
}
