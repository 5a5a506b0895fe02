package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func newRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	rc, err := NewRedisCache(WithRedisHost(mr.Host()), WithRedisPort(port), WithRedisPrefix("test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", payload{Name: "x", Items: []string{"1", "2"}}, 0))

	got, err := GetTyped[payload](ctx, mc, "a")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, []string{"1", "2"}, got.Items)

	_, err = GetTyped[payload](ctx, mc, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiresWithClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(func() time.Time { return now }))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	var v string
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryMaxSize(2), WithMemoryClock(func() time.Time { return now }))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	now = now.Add(time.Second)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	now = now.Add(time.Second)

	require.NoError(t, mc.Set(ctx, "c", 3, 0))
	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
}

func TestMemoryCacheUnboundedByDefault(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	for i := 0; i < 5000; i++ {
		require.NoError(t, mc.Set(ctx, strconv.Itoa(i), i, 0))
	}
	assert.Equal(t, 5000, mc.Len())
}

func TestMemoryCacheKeys(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, GenerateKey("scrape", "b"), 1, 0))
	require.NoError(t, mc.Set(ctx, GenerateKey("scrape", "a"), 1, 0))
	require.NoError(t, mc.Set(ctx, GenerateKey("ratelimit", "a"), 1, 0))

	keys, err := mc.Keys(ctx, BuildPattern("scrape"))
	require.NoError(t, err)
	assert.Equal(t, []string{"scrape:a", "scrape:b"}, keys)
}

func TestRedisCacheRoundTripAndKeys(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedis(t)

	require.NoError(t, rc.Set(ctx, "scrape:1", payload{Name: "one"}, time.Minute))
	require.NoError(t, rc.Set(ctx, "scrape:2", payload{Name: "two"}, 0))
	assert.True(t, mr.Exists("test:scrape:1"))

	got, err := GetTyped[payload](ctx, rc, "scrape:2")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Name)

	keys, err := rc.Keys(ctx, BuildPattern("scrape"))
	require.NoError(t, err)
	assert.Equal(t, []string{"scrape:1", "scrape:2"}, keys)

	require.NoError(t, rc.Delete(ctx, "scrape:1"))
	ok, err := rc.Exists(ctx, "scrape:1")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	_, err = GetTyped[payload](ctx, rc, "scrape:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLayeredCacheFallsBackToRedis(t *testing.T) {
	ctx := context.Background()
	rc, _ := newRedis(t)
	lc := NewLayeredCache(rc, WithLayeredMemorySize(10))

	require.NoError(t, rc.Set(ctx, "k", payload{Name: "from-redis"}, 0))

	got, err := GetTyped[payload](ctx, lc, "k")
	require.NoError(t, err)
	assert.Equal(t, "from-redis", got.Name)

	require.NoError(t, lc.Delete(ctx, "k"))
	_, err = GetTyped[payload](ctx, lc, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestHashKeyIsStable(t *testing.T) {
	assert.Equal(t, HashKey("https://example.com::200"), HashKey("https://example.com::200"))
	assert.NotEqual(t, HashKey("a"), HashKey("b"))
	assert.Len(t, HashKey("a"), 32)
}
