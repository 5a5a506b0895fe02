package usecase

import (
	"context"
	"fmt"
	"time"

	"SmartShop/internal/domain/models"
	drepo "SmartShop/internal/domain/repository"
	"SmartShop/pkg/util"

	"github.com/google/uuid"
)

const (
	BackendNone       = "none"
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
)

// PriceRecorder turns scraped prices into observations and routes them to
// the configured history backend.
type PriceRecorder struct {
	pub     drepo.ObservationPublisher
	store   drepo.PriceHistory
	metrics drepo.Metrics
	backend string
	now     func() time.Time
}

func NewPriceRecorder(
	pub drepo.ObservationPublisher,
	store drepo.PriceHistory,
	metrics drepo.Metrics,
	backend string,
) *PriceRecorder {
	if backend == "" {
		backend = BackendNone
	}
	return &PriceRecorder{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		now:     time.Now,
	}
}

// Observation builds an observation from a scrape. ok is false when the page
// had no parseable price.
func (p *PriceRecorder) Observation(url string, res *models.ScrapeResult) (*models.PriceObservation, bool) {
	if res == nil {
		return nil, false
	}
	price, ok := util.ParsePrice(res.ProductPrice)
	if !ok || price <= 0 {
		return nil, false
	}
	return &models.PriceObservation{
		EventID:    uuid.NewString(),
		URL:        url,
		Title:      res.ProductTitle,
		Price:      price,
		Raw:        res.ProductPrice,
		ObservedAt: p.now().UTC(),
	}, true
}

// Record stores the scraped price of url, if any.
func (p *PriceRecorder) Record(ctx context.Context, url string, res *models.ScrapeResult) error {
	if p.backend == BackendNone {
		return nil
	}
	o, ok := p.Observation(url, res)
	if !ok {
		return nil
	}
	return p.Process(ctx, o)
}

// Process routes a single observation to the configured backend.
func (p *PriceRecorder) Process(ctx context.Context, o *models.PriceObservation) error {
	if o == nil {
		return fmt.Errorf("observation is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case BackendNone:
		return nil
	case BackendKafka:
		err = p.pub.Publish(ctx, o)
	case BackendClickHouse:
		err = p.store.Store(ctx, o)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("record_price")
		return fmt.Errorf("record price: %w", err)
	}

	p.metrics.RecordObservation(p.backend)
	p.metrics.RecordLatency("record_price", time.Since(start))
	return nil
}
