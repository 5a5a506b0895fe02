package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastFromSuppliedPrices(t *testing.T) {
	f := NewPriceForecaster(nil, 90, &nopMetrics{})
	res, err := f.Forecast(context.Background(), &models.PredictPriceRequest{
		Prices: []models.PricePoint{{Price: 100}, {Price: 102}, {Price: 104}},
		Days:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 107.0, res.PredictedAvg)
	assert.Equal(t, "buy", res.Recommendation)
}

func TestForecastFromHistory(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	hist := &fakeHistory{}
	for i, p := range []float64{50, 49, 48, 47} {
		hist.recent = append(hist.recent, &models.PriceObservation{URL: productURL, Price: p, ObservedAt: base.AddDate(0, 0, i)})
	}

	f := NewPriceForecaster(hist, 3, &nopMetrics{})
	res, err := f.Forecast(context.Background(), &models.PredictPriceRequest{URL: productURL, Days: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.InputCount)
	assert.Equal(t, 46.0, res.Predictions[0].Price)
}

func TestForecastRejectsMissingHistory(t *testing.T) {
	var ve *errs.ValidationError

	_, err := NewPriceForecaster(nil, 90, &nopMetrics{}).Forecast(context.Background(), &models.PredictPriceRequest{URL: productURL, Days: 7})
	assert.True(t, errors.As(err, &ve))

	_, err = NewPriceForecaster(&fakeHistory{}, 90, &nopMetrics{}).Forecast(context.Background(), &models.PredictPriceRequest{URL: productURL, Days: 7})
	assert.True(t, errors.As(err, &ve))

	m := &nopMetrics{}
	_, err = NewPriceForecaster(&fakeHistory{err: errors.New("boom")}, 90, m).Forecast(context.Background(), &models.PredictPriceRequest{URL: productURL, Days: 7})
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, []string{"history_recent"}, m.errors)
}
