package repository

import (
	"context"
	"time"

	"SmartShop/internal/domain/models"
)

// ScrapeStore persists cached page extractions keyed by url and fetch cap.
type ScrapeStore interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, bool, error)
	Put(ctx context.Context, key string, entry *models.CacheEntry) error
	Delete(ctx context.Context, key string) error
	// Prune removes entries older than maxAge and reports how many were dropped.
	Prune(ctx context.Context, maxAge time.Duration) (int, error)
}

// RateLimitStore persists per-client request timestamps.
type RateLimitStore interface {
	Get(ctx context.Context, key string) (*models.RateLimitEntry, bool, error)
	Put(ctx context.Context, entry *models.RateLimitEntry) error
	Delete(ctx context.Context, key string) error
	// Prune removes entries with no timestamp newer than now-window.
	Prune(ctx context.Context, window time.Duration) (int, error)
}

// PriceHistory stores and queries scraped price observations.
type PriceHistory interface {
	Init(ctx context.Context) error // ensure tables
	Store(ctx context.Context, o *models.PriceObservation) error
	StoreBatch(ctx context.Context, obs []*models.PriceObservation) error
	// Recent returns up to limit observations for url in ascending time order.
	Recent(ctx context.Context, url string, limit int) ([]*models.PriceObservation, error)
	Health(ctx context.Context) error
	Close() error
}

// ObservationPublisher ships observations to a stream.
type ObservationPublisher interface {
	Publish(ctx context.Context, o *models.PriceObservation) error
	Close() error
}

type Metrics interface {
	RecordCacheLookup(hit bool)
	RecordRateLimited()
	RecordFetch(method string, reviews int)
	RecordAnalysis(total, fake int)
	RecordObservation(backend string)
	RecordError(kind string)
	RecordLatency(op string, d time.Duration)
	RecordUpstream(op string, d time.Duration, err error)
}
