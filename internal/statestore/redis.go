package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dvfens/ags/pkg/logger"
)

// RedisStore keeps JSON-encoded state under prefix:key. The TTL restarts on every write.
// Changes are published on prefix:events so every server instance can fan them out
// to its local subscribers.
type RedisStore[T any] struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	origin  string
	subs    *listeners[T]
	channel string
}

type changeEvent struct {
	Origin  string          `json:"origin"`
	Key     string          `json:"key"`
	Deleted bool            `json:"deleted,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
}

func NewRedisStore[T any](client *redis.Client, prefix string, ttl time.Duration) *RedisStore[T] {
	return &RedisStore[T]{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		origin:  uuid.NewString(),
		subs:    newListeners[T](),
		channel: prefix + ":events",
	}
}

func (s *RedisStore[T]) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *RedisStore[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	raw, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, ErrNotFound
	}
	if err != nil {
		logger.Error("Failed to read session state", err, map[string]interface{}{
			"prefix": s.prefix,
		})
		return v, fmt.Errorf("read state: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode state: %w", err)
	}
	return v, nil
}

func (s *RedisStore[T]) Set(ctx context.Context, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), raw, s.ttl).Err(); err != nil {
		logger.Error("Failed to write session state", err, map[string]interface{}{
			"prefix": s.prefix,
		})
		return fmt.Errorf("write state: %w", err)
	}

	s.subs.notify(key, v)
	s.publish(ctx, changeEvent{Origin: s.origin, Key: key, Value: raw})
	return nil
}

// maxUpdateAttempts bounds optimistic retries when another writer touches the key
// between WATCH and EXEC.
const maxUpdateAttempts = 16

var ErrUpdateConflict = errors.New("state update conflict")

// Update runs fn under WATCH on the key and writes the result in a MULTI/EXEC,
// retrying when another writer got in between.
func (s *RedisStore[T]) Update(ctx context.Context, key string, fallback T, fn func(T) (T, error)) (T, error) {
	rk := s.redisKey(key)

	var cur, next T
	var raw []byte
	txf := func(tx *redis.Tx) error {
		var loaded T
		b, err := tx.Get(ctx, rk).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			loaded = fallback
		case err != nil:
			return fmt.Errorf("read state: %w", err)
		default:
			if err := json.Unmarshal(b, &loaded); err != nil {
				return fmt.Errorf("decode state: %w", err)
			}
		}
		cur = loaded

		next, err = fn(loaded)
		if err != nil {
			return err
		}
		raw, err = json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, raw, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, rk)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return cur, err
		}

		s.subs.notify(key, next)
		s.publish(ctx, changeEvent{Origin: s.origin, Key: key, Value: raw})
		return next, nil
	}

	logger.Warn("Session state update kept conflicting", map[string]interface{}{
		"prefix":   s.prefix,
		"attempts": maxUpdateAttempts,
	})
	return cur, ErrUpdateConflict
}

func (s *RedisStore[T]) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.redisKey(key)).Result()
	if err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	if n > 0 {
		var zero T
		s.subs.notify(key, zero)
		s.publish(ctx, changeEvent{Origin: s.origin, Key: key, Deleted: true})
	}
	return nil
}

func (s *RedisStore[T]) Subscribe(fn Listener[T]) func() {
	return s.subs.add(fn)
}

// publish is best effort; a lost event only delays a websocket refresh on other instances.
func (s *RedisStore[T]) publish(ctx context.Context, ev changeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		logger.Warn("Failed to publish state change", map[string]interface{}{
			"channel": s.channel,
			"error":   err.Error(),
		})
	}
}

// Listen relays changes made by other instances to local subscribers until ctx is done.
func (s *RedisStore[T]) Listen(ctx context.Context) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	logger.Info("Listening for session state changes", map[string]interface{}{
		"channel": s.channel,
	})

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.relay(msg.Payload)
		}
	}
}

func (s *RedisStore[T]) relay(payload string) {
	var ev changeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		logger.Warn("Dropping malformed state event", map[string]interface{}{
			"channel": s.channel,
		})
		return
	}
	if ev.Origin == s.origin {
		return
	}

	var v T
	if !ev.Deleted {
		if err := json.Unmarshal(ev.Value, &v); err != nil {
			return
		}
	}
	s.subs.notify(ev.Key, v)
}
