package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SmartShop/internal/domain/models"
	"SmartShop/internal/domain/repository"
	"SmartShop/pkg/cache"
)

const (
	scrapePrefix    = "scrape"
	rateLimitPrefix = "ratelimit"
)

// KVScrapeStore keeps cache entries in any pkg/cache backend. Keys are hashed
// so arbitrary URLs stay valid Redis keys.
type KVScrapeStore struct {
	kv  cache.Service
	ttl time.Duration
	now func() time.Time
}

// NewKVScrapeStore creates a store whose backend entries expire after ttl.
func NewKVScrapeStore(kv cache.Service, ttl time.Duration) *KVScrapeStore {
	return &KVScrapeStore{kv: kv, ttl: ttl, now: time.Now}
}

var _ repository.ScrapeStore = (*KVScrapeStore)(nil)

func (s *KVScrapeStore) key(k string) string {
	return cache.GenerateKey(scrapePrefix, cache.HashKey(k))
}

func (s *KVScrapeStore) Get(ctx context.Context, key string) (*models.CacheEntry, bool, error) {
	entry, err := cache.GetTyped[models.CacheEntry](ctx, s.kv, s.key(key))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("scrape store get: %w", err)
	}
	return &entry, true, nil
}

func (s *KVScrapeStore) Put(ctx context.Context, key string, entry *models.CacheEntry) error {
	if err := s.kv.Set(ctx, s.key(key), entry, s.ttl); err != nil {
		return fmt.Errorf("scrape store put: %w", err)
	}
	return nil
}

func (s *KVScrapeStore) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, s.key(key))
}

func (s *KVScrapeStore) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	keys, err := s.kv.Keys(ctx, cache.BuildPattern(scrapePrefix))
	if err != nil {
		return 0, fmt.Errorf("scrape store prune: %w", err)
	}
	cutoff := s.now().Add(-maxAge)
	pruned := 0
	for _, k := range keys {
		entry, err := cache.GetTyped[models.CacheEntry](ctx, s.kv, k)
		if errors.Is(err, cache.ErrCacheMiss) {
			continue
		}
		if err != nil || entry.Timestamp.Before(cutoff) {
			if derr := s.kv.Delete(ctx, k); derr != nil {
				return pruned, fmt.Errorf("scrape store prune: %w", derr)
			}
			pruned++
		}
	}
	return pruned, nil
}

// KVRateLimitStore keeps request timestamps per client key.
type KVRateLimitStore struct {
	kv     cache.Service
	window time.Duration
	now    func() time.Time
}

func NewKVRateLimitStore(kv cache.Service, window time.Duration) *KVRateLimitStore {
	return &KVRateLimitStore{kv: kv, window: window, now: time.Now}
}

var _ repository.RateLimitStore = (*KVRateLimitStore)(nil)

func (s *KVRateLimitStore) key(k string) string {
	return cache.GenerateKey(rateLimitPrefix, k)
}

func (s *KVRateLimitStore) Get(ctx context.Context, key string) (*models.RateLimitEntry, bool, error) {
	entry, err := cache.GetTyped[models.RateLimitEntry](ctx, s.kv, s.key(key))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("rate limit store get: %w", err)
	}
	return &entry, true, nil
}

func (s *KVRateLimitStore) Put(ctx context.Context, entry *models.RateLimitEntry) error {
	if err := s.kv.Set(ctx, s.key(entry.Key), entry, s.window); err != nil {
		return fmt.Errorf("rate limit store put: %w", err)
	}
	return nil
}

func (s *KVRateLimitStore) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, s.key(key))
}

func (s *KVRateLimitStore) Prune(ctx context.Context, window time.Duration) (int, error) {
	keys, err := s.kv.Keys(ctx, cache.BuildPattern(rateLimitPrefix))
	if err != nil {
		return 0, fmt.Errorf("rate limit store prune: %w", err)
	}
	cutoff := s.now().Add(-window)
	pruned := 0
	for _, k := range keys {
		entry, err := cache.GetTyped[models.RateLimitEntry](ctx, s.kv, k)
		if errors.Is(err, cache.ErrCacheMiss) {
			continue
		}
		if err == nil && hasRecent(entry.Timestamps, cutoff) {
			continue
		}
		if derr := s.kv.Delete(ctx, k); derr != nil {
			return pruned, fmt.Errorf("rate limit store prune: %w", derr)
		}
		pruned++
	}
	return pruned, nil
}

func hasRecent(ts []time.Time, cutoff time.Time) bool {
	for _, t := range ts {
		if !t.Before(cutoff) {
			return true
		}
	}
	return false
}
