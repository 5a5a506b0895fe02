package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"SmartShop/internal/domain/models"
	drepo "SmartShop/internal/domain/repository"
	applogger "SmartShop/pkg/logger"
	"SmartShop/pkg/queue"
)

// PriceRefreshType is the queue message type of a background re-scrape.
const PriceRefreshType = "price.refresh"

// PriceRefreshJob re-scrapes one product URL, overwriting its cache entry and
// recording its price.
type PriceRefreshJob struct {
	products *ProductLookup
	metrics  drepo.Metrics
	log      *applogger.Logger
}

var _ queue.Job = (*PriceRefreshJob)(nil)

func NewPriceRefreshJob(products *ProductLookup, metrics drepo.Metrics, log *applogger.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{products: products, metrics: metrics, log: log}
}

func (j *PriceRefreshJob) Name() string { return "price_refresh" }
func (j *PriceRefreshJob) Type() string { return PriceRefreshType }

func (j *PriceRefreshJob) Handle(ctx context.Context, payload json.RawMessage) error {
	req, err := queue.Decode[models.RefreshPriceRequest](payload)
	if err != nil {
		j.metrics.RecordError("refresh_decode")
		return err
	}
	res, err := j.products.Refresh(ctx, req.URL)
	if err != nil {
		j.metrics.RecordError("refresh")
		return err
	}
	j.log.Info("price refreshed",
		applogger.String("url", req.URL),
		applogger.String("price", res.ProductPrice),
		applogger.String("method", res.FetchMethod))
	return nil
}

// PriceRefresher schedules background refreshes.
type PriceRefresher struct {
	publisher queue.Publisher
	pending   func(ctx context.Context) (int64, error)
}

// NewPriceRefresher wraps a queue. pending may be nil.
func NewPriceRefresher(p queue.Publisher, pending func(ctx context.Context) (int64, error)) *PriceRefresher {
	return &PriceRefresher{publisher: p, pending: pending}
}

func (r *PriceRefresher) Schedule(ctx context.Context, req *models.RefreshPriceRequest) (*models.RefreshPriceResponse, error) {
	if err := r.publisher.Enqueue(ctx, PriceRefreshType, req); err != nil {
		return nil, fmt.Errorf("enqueue refresh: %w", err)
	}
	out := &models.RefreshPriceResponse{Queued: true, URL: req.URL}
	if r.pending != nil {
		if n, err := r.pending(ctx); err == nil {
			out.Pending = n
		}
	}
	return out, nil
}
