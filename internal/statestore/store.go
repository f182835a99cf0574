// Package statestore keeps per-session state (cart, address capture flow) behind
// explicit Get/Set/Delete/Subscribe operations. Each store is an isolated instance.
package statestore

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("state not found")

// Listener is called after every successful Set or Delete. On Delete v is the zero value.
// Listeners run while the key is locked and must not write to the same store.
type Listener[T any] func(key string, v T)

// Store is a keyed state container. Implementations are safe for concurrent use.
type Store[T any] interface {
	Get(ctx context.Context, key string) (T, error)
	Set(ctx context.Context, key string, v T) error
	Delete(ctx context.Context, key string) error
	Subscribe(fn Listener[T]) (cancel func())
}

// Updater is implemented by stores that apply a read-modify-write atomically per key.
type Updater[T any] interface {
	Update(ctx context.Context, key string, fallback T, fn func(T) (T, error)) (T, error)
}

// keyLocks hands out one mutex per key. Entries are dropped once nobody holds them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// listeners is the subscription registry shared by the store implementations.
type listeners[T any] struct {
	mu   sync.RWMutex
	next int
	fns  map[int]Listener[T]
}

func newListeners[T any]() *listeners[T] {
	return &listeners[T]{fns: make(map[int]Listener[T])}
}

func (l *listeners[T]) add(fn Listener[T]) func() {
	l.mu.Lock()
	id := l.next
	l.next++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners[T]) notify(key string, v T) {
	l.mu.RLock()
	fns := make([]Listener[T], 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(key, v)
	}
}

// GetOr returns the stored value for key, or fallback when nothing is stored.
func GetOr[T any](ctx context.Context, s Store[T], key string, fallback T) (T, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	return v, err
}

// Update loads the value for key (fallback when absent), applies fn and stores the result.
// fn's error aborts the write. Stores implementing Updater run this atomically per key;
// for any other store concurrent updates of one key may overwrite each other.
func Update[T any](ctx context.Context, s Store[T], key string, fallback T, fn func(T) (T, error)) (T, error) {
	if u, ok := s.(Updater[T]); ok {
		return u.Update(ctx, key, fallback, fn)
	}
	return readModifyWrite(ctx, s.Get, s.Set, key, fallback, fn)
}

func readModifyWrite[T any](
	ctx context.Context,
	get func(context.Context, string) (T, error),
	set func(context.Context, string, T) error,
	key string, fallback T, fn func(T) (T, error),
) (T, error) {
	cur, err := get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		cur, err = fallback, nil
	}
	if err != nil {
		var zero T
		return zero, err
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	if err := set(ctx, key, next); err != nil {
		return cur, err
	}
	return next, nil
}
