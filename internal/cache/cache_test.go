package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
)

func TestTrendingKey(t *testing.T) {
	assert.Equal(t, "trending:0:all", TrendingKey(0, nil))

	game := sensitivity.GameFreeFire
	assert.Equal(t, "trending:7:Free Fire", TrendingKey(7, &game))
	assert.NotEqual(t, TrendingKey(1, &game), TrendingKey(2, &game))
	assert.False(t, strings.HasPrefix(GenerationKey, KeyPrefix))
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoopCache()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.Set(ctx, TrendingKey(gen, nil), []string{"a"}))
	_, ok := c.Get(ctx, TrendingKey(gen, nil))
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx))
}

// unreachableRedis points at a port nothing listens on.
func unreachableRedis(t *testing.T) *RedisCache {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := newRedisCache(client, 0, nil)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache_UnreachableDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	c := unreachableRedis(t)

	_, ok := c.Get(ctx, TrendingKey(0, nil))
	assert.False(t, ok)

	_, err := c.Generation(ctx)
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, TrendingKey(0, nil), []string{"a", "b"}))
	assert.Error(t, c.Invalidate(ctx))
	assert.Error(t, c.Ping(ctx))
}

func TestRedisCache_DefaultTTL(t *testing.T) {
	c := unreachableRedis(t)
	assert.Equal(t, DefaultTTL, c.ttl)

	custom := newRedisCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), time.Minute, nil)
	defer custom.Close()
	assert.Equal(t, time.Minute, custom.ttl)
}

var (
	_ TrendingCache = (*NoopCache)(nil)
	_ TrendingCache = (*RedisCache)(nil)
)
