package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"SmartShop/internal/domain/models"
	"SmartShop/internal/domain/repository"
)

const hitLog = "⚡ Served from cache (cache hit)"

// ReviewCache maps (url, fetch cap) to an extraction. An entry is fresh while
// now - timestamp < ttl; stale entries are evicted on lookup.
type ReviewCache struct {
	store repository.ScrapeStore
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*ReviewCache)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(c *ReviewCache) { c.now = now }
}

func NewReviewCache(store repository.ScrapeStore, ttl time.Duration, opts ...Option) *ReviewCache {
	c := &ReviewCache{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key joins the url and fetch cap.
func Key(url string, limit int) string {
	return url + "::" + strconv.Itoa(limit)
}

// Get returns a copy of the cached payload with a cache hit line appended to
// its logs. A miss returns nil.
func (c *ReviewCache) Get(ctx context.Context, url string, limit int) (*models.ScrapeResult, error) {
	key := Key(url, limit)
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	if c.now().Sub(entry.Timestamp) >= c.ttl {
		if err := c.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("evict stale entry: %w", err)
		}
		return nil, nil
	}
	out := entry.Payload.Clone()
	out.Logs = append(out.Logs, hitLog)
	return out, nil
}

func (c *ReviewCache) Put(ctx context.Context, url string, limit int, payload *models.ScrapeResult) error {
	return c.store.Put(ctx, Key(url, limit), &models.CacheEntry{
		Timestamp: c.now(),
		Payload:   *payload.Clone(),
	})
}

// Prune drops every entry older than the ttl.
func (c *ReviewCache) Prune(ctx context.Context) (int, error) {
	return c.store.Prune(ctx, c.ttl)
}
