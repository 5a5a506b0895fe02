package usecase

import (
	"context"
	"sync"
	"time"

	"SmartShop/internal/domain/models"
)

type nopMetrics struct {
	mu           sync.Mutex
	hits, misses int
	errors       []string
	observations []string
}

func (m *nopMetrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}
func (m *nopMetrics) RecordRateLimited() {}
func (m *nopMetrics) RecordFetch(string, int) {}
func (m *nopMetrics) RecordAnalysis(int, int) {}
func (m *nopMetrics) RecordLatency(string, time.Duration) {}
func (m *nopMetrics) RecordUpstream(string, time.Duration, error) {}
func (m *nopMetrics) RecordObservation(backend string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, backend)
}
func (m *nopMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

type fakeScraper struct {
	calls  int
	result func() *models.ScrapeResult
}

func (f *fakeScraper) Scrape(_ context.Context, _ string, _ int) *models.ScrapeResult {
	f.calls++
	return f.result()
}

type fakeHistory struct {
	stored []*models.PriceObservation
	recent []*models.PriceObservation
	err    error
}

func (f *fakeHistory) Init(context.Context) error { return nil }
func (f *fakeHistory) Store(_ context.Context, o *models.PriceObservation) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, o)
	return nil
}
func (f *fakeHistory) StoreBatch(ctx context.Context, obs []*models.PriceObservation) error {
	for _, o := range obs {
		if err := f.Store(ctx, o); err != nil {
			return err
		}
	}
	return nil
}
func (f *fakeHistory) Recent(_ context.Context, _ string, limit int) ([]*models.PriceObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.recent) > limit {
		return f.recent[len(f.recent)-limit:], nil
	}
	return f.recent, nil
}
func (f *fakeHistory) Health(context.Context) error { return nil }
func (f *fakeHistory) Close() error { return nil }

type fakePublisher struct {
	published []*models.PriceObservation
	closed    bool
}

func (f *fakePublisher) Publish(_ context.Context, o *models.PriceObservation) error {
	f.published = append(f.published, o)
	return nil
}
func (f *fakePublisher) Close() error { f.closed = true; return nil }

type fakeStreamer struct {
	got    *models.ChatCompletionRequest
	deltas []string
}

func (f *fakeStreamer) Stream(_ context.Context, req *models.ChatCompletionRequest) (<-chan string, <-chan error) {
	f.got = req
	out := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		for _, d := range f.deltas {
			out <- d
		}
	}()
	return out, errCh
}
