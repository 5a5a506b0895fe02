package cache

import (
	"context"
	"testing"
	"time"

	"SmartShop/internal/domain/models"
	"SmartShop/internal/repository"
	pkgcache "SmartShop/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newCache(t *testing.T) (*ReviewCache, *clock) {
	t.Helper()
	mc := pkgcache.NewMemoryCache(pkgcache.WithMemoryCleanup(0))
	t.Cleanup(func() { _ = mc.Close() })
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewReviewCache(repository.NewKVScrapeStore(mc, 10*time.Minute), 300*time.Second, WithClock(clk.Now)), clk
}

func TestReviewCacheHitWithinTTL(t *testing.T) {
	ctx := context.Background()
	c, clk := newCache(t)

	payload := &models.ScrapeResult{Reviews: []string{"first review text"}, Logs: []string{"fetched"}}
	require.NoError(t, c.Put(ctx, "https://shop.example/p", 200, payload))

	clk.t = clk.t.Add(299 * time.Second)
	got, err := c.Get(ctx, "https://shop.example/p", 200)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, payload.Reviews, got.Reviews)
	assert.Equal(t, []string{"fetched", hitLog}, got.Logs)

	again, err := c.Get(ctx, "https://shop.example/p", 200)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestReviewCacheMissAfterTTL(t *testing.T) {
	ctx := context.Background()
	c, clk := newCache(t)

	require.NoError(t, c.Put(ctx, "https://shop.example/p", 200, &models.ScrapeResult{Reviews: []string{"x"}}))

	clk.t = clk.t.Add(300 * time.Second)
	got, err := c.Get(ctx, "https://shop.example/p", 200)
	require.NoError(t, err)
	assert.Nil(t, got)

	// evicted, so rewinding the clock does not bring it back
	clk.t = clk.t.Add(-time.Minute)
	got, err = c.Get(ctx, "https://shop.example/p", 200)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReviewCacheKeyIncludesFetchCap(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	require.NoError(t, c.Put(ctx, "https://shop.example/p", 200, &models.ScrapeResult{Reviews: []string{"x"}}))
	got, err := c.Get(ctx, "https://shop.example/p", 20)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, "https://shop.example/p::200", Key("https://shop.example/p", 200))
}

func TestReviewCacheStoresCopies(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	payload := &models.ScrapeResult{Reviews: []string{"x"}, Logs: []string{"a"}}
	require.NoError(t, c.Put(ctx, "u", 1, payload))
	payload.Reviews[0] = "mutated"

	got, err := c.Get(ctx, "u", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Reviews)
}
