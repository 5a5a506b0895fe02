package usecase

import (
	"context"
	"fmt"
	"time"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"
	drepo "SmartShop/internal/domain/repository"
	"SmartShop/internal/services/predictor"
)

// PriceForecaster predicts from caller-supplied points or, when only a URL is
// given, from the stored price history of that URL.
type PriceForecaster struct {
	history   drepo.PriceHistory
	maxPoints int
	metrics   drepo.Metrics
}

// NewPriceForecaster accepts a nil history; URL-only requests are then rejected.
func NewPriceForecaster(history drepo.PriceHistory, maxPoints int, metrics drepo.Metrics) *PriceForecaster {
	return &PriceForecaster{history: history, maxPoints: maxPoints, metrics: metrics}
}

func (f *PriceForecaster) Forecast(ctx context.Context, req *models.PredictPriceRequest) (*models.PredictionResult, error) {
	points := req.Prices
	if len(points) == 0 && req.URL != "" {
		if f.history == nil {
			return nil, errs.Validation("url", "price history is not enabled; provide at least 3 prices")
		}
		obs, err := f.history.Recent(ctx, req.URL, f.maxPoints)
		if err != nil {
			f.metrics.RecordError("history_recent")
			return nil, fmt.Errorf("load price history: %w", err)
		}
		points = predictor.FromObservations(obs)
	}

	start := time.Now()
	res, err := predictor.Predict(points, req.Days)
	f.metrics.RecordLatency("predict", time.Since(start))
	return res, err
}
