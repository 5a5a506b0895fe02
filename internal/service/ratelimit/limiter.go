package ratelimit

import (
	"context"
	"sync"
	"time"

	"SmartShop/internal/domain/models"
	"SmartShop/internal/domain/repository"
)

// Limiter is a sliding-window limiter: a key may make max requests within any
// trailing window. Rejected requests do not consume a slot.
type Limiter struct {
	mu     sync.Mutex
	store  repository.RateLimitStore
	max    int
	window time.Duration
	now    func() time.Time
}

type Option func(*Limiter)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(store repository.RateLimitStore, max int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{store: store, max: max, window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsLimited records a request for key unless the window is full. When limited
// it reports how long until the oldest request leaves the window.
func (l *Limiter) IsLimited(ctx context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	entry, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return false, 0, err
	}
	if !ok {
		entry = &models.RateLimitEntry{Key: key}
	}

	kept := entry.Timestamps[:0]
	for _, ts := range entry.Timestamps {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	entry.Timestamps = kept

	if len(kept) >= l.max {
		// persist the pruned list without the rejected request
		if err := l.store.Put(ctx, entry); err != nil {
			return true, 0, err
		}
		retry := kept[0].Add(l.window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return true, retry, nil
	}

	entry.Timestamps = append(entry.Timestamps, now)
	return false, 0, l.store.Put(ctx, entry)
}

// Prune drops keys with no request inside the window.
func (l *Limiter) Prune(ctx context.Context) (int, error) {
	return l.store.Prune(ctx, l.window)
}
