package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvfens/ags/config"
)

func TestDisabledRedisIsNoop(t *testing.T) {
	require.NoError(t, Init(&config.RedisConfig{}))
	assert.False(t, Enabled())

	ctx := context.Background()
	assert.NoError(t, BlacklistToken(ctx, "tok", time.Minute))

	revoked, err := IsTokenBlacklisted(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	allowed, retry, err := NewRateLimiter(nil, "login", 1, time.Minute).Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, retry)
	assert.NoError(t, Close())
}

// Needs a reachable Redis; set TEST_REDIS_ADDR to run.
func TestRateLimiterAndBlacklist(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	c := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	require.NoError(t, c.FlushDB(ctx).Err())
	t.Cleanup(func() {
		c.FlushDB(context.Background())
		c.Close()
		client = nil
	})

	limiter := NewRateLimiter(c, "signup", 2, time.Minute)
	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, retry, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retry, time.Duration(0))

	allowed, _, err = limiter.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, allowed)

	client = c
	require.NoError(t, BlacklistToken(ctx, "tok", time.Minute))
	revoked, err := IsTokenBlacklisted(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}
