package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/repository"
)

// DBStore keeps JSON-encoded state in the session_states table, one namespace per store.
// Updates are serialized per key within the process; deployments running several
// instances share state through RedisStore instead.
type DBStore[T any] struct {
	repo      repository.SessionStateRepository
	namespace string
	ttl       time.Duration
	subs      *listeners[T]
	keys      keyLocks
}

func NewDBStore[T any](repo repository.SessionStateRepository, namespace string, ttl time.Duration) *DBStore[T] {
	return &DBStore[T]{
		repo:      repo,
		namespace: namespace,
		ttl:       ttl,
		subs:      newListeners[T](),
	}
}

func (s *DBStore[T]) Get(_ context.Context, key string) (T, error) {
	var v T
	state, err := s.repo.Find(s.namespace, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, fmt.Errorf("read state: %w", err)
	}
	if err := json.Unmarshal([]byte(state.Data), &v); err != nil {
		return v, fmt.Errorf("decode state: %w", err)
	}
	return v, nil
}

func (s *DBStore[T]) Set(ctx context.Context, key string, v T) error {
	unlock := s.keys.lock(key)
	defer unlock()
	return s.put(ctx, key, v)
}

func (s *DBStore[T]) Update(ctx context.Context, key string, fallback T, fn func(T) (T, error)) (T, error) {
	unlock := s.keys.lock(key)
	defer unlock()
	return readModifyWrite(ctx, s.Get, s.put, key, fallback, fn)
}

func (s *DBStore[T]) put(_ context.Context, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	state := &model.SessionState{
		Namespace: s.namespace,
		Key:       key,
		Data:      string(raw),
		UpdatedAt: time.Now(),
	}
	if s.ttl > 0 {
		state.ExpiresAt = time.Now().Add(s.ttl)
	}
	if err := s.repo.Upsert(state); err != nil {
		return fmt.Errorf("write state: %w", err)
	}

	s.subs.notify(key, v)
	return nil
}

func (s *DBStore[T]) Delete(_ context.Context, key string) error {
	unlock := s.keys.lock(key)
	defer unlock()

	deleted, err := s.repo.Delete(s.namespace, key)
	if err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	if deleted {
		var zero T
		s.subs.notify(key, zero)
	}
	return nil
}

func (s *DBStore[T]) Subscribe(fn Listener[T]) func() {
	return s.subs.add(fn)
}
