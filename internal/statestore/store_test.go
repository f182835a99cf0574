package statestore

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvfens/ags/internal/app/repository"
	"github.com/dvfens/ags/internal/db"
)

type counter struct {
	N     int    `json:"n"`
	Label string `json:"label"`
}

// storeContract runs the same behaviour checks against any Store implementation.
// writers is the number of goroutines racing on one key in the update check.
func storeContract(t *testing.T, writers int, newStore func(t *testing.T) Store[counter]) {
	ctx := context.Background()

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", counter{N: 2, Label: "two"}))

		v, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, counter{N: 2, Label: "two"}, v)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", counter{N: 1}))
		require.NoError(t, s.Set(ctx, "b", counter{N: 9}))

		a, _ := s.Get(ctx, "a")
		b, _ := s.Get(ctx, "b")
		assert.Equal(t, 1, a.N)
		assert.Equal(t, 9, b.N)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", counter{N: 1}))
		require.NoError(t, s.Delete(ctx, "a"))

		_, err := s.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting again is fine.
		assert.NoError(t, s.Delete(ctx, "a"))
	})

	t.Run("subscribe sees writes until cancelled", func(t *testing.T) {
		s := newStore(t)

		var mu sync.Mutex
		var seen []int
		cancel := s.Subscribe(func(key string, v counter) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, v.N)
		})

		require.NoError(t, s.Set(ctx, "a", counter{N: 1}))
		require.NoError(t, s.Set(ctx, "a", counter{N: 2}))
		cancel()
		cancel() // idempotent
		require.NoError(t, s.Set(ctx, "a", counter{N: 3}))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []int{1, 2}, seen)
	})

	t.Run("subscribe sees deletes as zero value", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a", counter{N: 5}))

		var got *counter
		cancel := s.Subscribe(func(key string, v counter) {
			got = &v
		})
		defer cancel()

		require.NoError(t, s.Delete(ctx, "a"))
		require.NotNil(t, got)
		assert.Equal(t, counter{}, *got)
	})

	t.Run("concurrent updates of one key are not lost", func(t *testing.T) {
		s := newStore(t)
		_, ok := s.(Updater[counter])
		require.True(t, ok, "store must apply updates atomically")

		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := Update(ctx, s, "sid", counter{}, func(c counter) (counter, error) {
					time.Sleep(time.Millisecond)
					c.N++
					return c, nil
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		v, err := s.Get(ctx, "sid")
		require.NoError(t, err)
		assert.Equal(t, writers, v.N)
	})

	t.Run("update does not touch other keys", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "other", counter{N: 7}))

		v, err := Update(ctx, s, "sid", counter{N: 1}, func(c counter) (counter, error) {
			c.N *= 10
			return c, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 10, v.N)

		other, err := s.Get(ctx, "other")
		require.NoError(t, err)
		assert.Equal(t, 7, other.N)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, 200, func(t *testing.T) Store[counter] {
		return NewMemoryStore[counter]()
	})
}

func TestDBStore(t *testing.T) {
	storeContract(t, 50, func(t *testing.T) Store[counter] {
		testDB, err := db.SetupTestDB()
		require.NoError(t, err)
		t.Cleanup(func() {
			db.CleanupTestDB(testDB)
		})
		return NewDBStore[counter](repository.NewSessionStateRepository(testDB), "cart", time.Hour)
	})
}

func TestDBStore_NamespacesAndExpiry(t *testing.T) {
	ctx := context.Background()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	repo := repository.NewSessionStateRepository(testDB)

	carts := NewDBStore[counter](repo, "cart", time.Hour)
	flows := NewDBStore[counter](repo, "flow", time.Hour)
	require.NoError(t, carts.Set(ctx, "s1", counter{N: 1}))

	_, err = flows.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, carts.Set(ctx, "s1", counter{N: 2}))
	v, err := carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, v.N)

	expired := NewDBStore[counter](repo, "short", time.Nanosecond)
	require.NoError(t, expired.Set(ctx, "s1", counter{N: 3}))
	time.Sleep(2 * time.Millisecond)
	_, err = expired.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	purged, err := repo.DeleteExpired(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

// TestRedisStore needs a reachable Redis; set TEST_REDIS_ADDR (e.g. localhost:6379) to run it.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	require.NoError(t, client.Ping(context.Background()).Err())

	// Optimistic retries are bounded, so keep the writer count below maxUpdateAttempts.
	storeContract(t, 10, func(t *testing.T) Store[counter] {
		client.FlushDB(context.Background())
		return NewRedisStore[counter](client, "test:"+t.Name(), time.Minute)
	})
}

func TestRedisStore_RelayIgnoresOwnEvents(t *testing.T) {
	s := NewRedisStore[counter](nil, "relay", time.Minute)

	var got []counter
	s.Subscribe(func(key string, v counter) { got = append(got, v) })

	s.relay(`{"origin":"` + s.origin + `","key":"a","value":{"n":1}}`)
	assert.Empty(t, got)

	s.relay(`{"origin":"other","key":"a","value":{"n":4,"label":"x"}}`)
	s.relay(`{"origin":"other","key":"a","deleted":true}`)
	s.relay(`not json`)

	require.Len(t, got, 2)
	assert.Equal(t, counter{N: 4, Label: "x"}, got[0])
	assert.Equal(t, counter{}, got[1])
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[counter]()

	v, err := Update(ctx, s, "k", counter{N: 10}, func(c counter) (counter, error) {
		c.N++
		return c, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 11, v.N)

	stored, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 11, stored.N)

	boom := errors.New("boom")
	_, err = Update(ctx, s, "k", counter{}, func(c counter) (counter, error) {
		c.N = 99
		return c, boom
	})
	assert.ErrorIs(t, err, boom)

	stored, _ = s.Get(ctx, "k")
	assert.Equal(t, 11, stored.N)
}

func TestKeyLocks_ReleaseEntries(t *testing.T) {
	var k keyLocks

	unlockA := k.lock("a")
	unlockB := k.lock("b")
	assert.Len(t, k.locks, 2)

	unlockA()
	unlockB()
	assert.Empty(t, k.locks)
}

func TestGetOr(t *testing.T) {
	s := NewMemoryStore[counter]()

	v, err := GetOr(context.Background(), s, "none", counter{Label: "fallback"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", v.Label)
}
