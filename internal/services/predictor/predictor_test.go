package predictor

import (
	"math"
	"testing"
	"time"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"
	"SmartShop/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(v int64) *int64 { return &v }

func points(prices ...float64) []models.PricePoint {
	out := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{Price: p}
	}
	return out
}

func TestPredictRisingSeries(t *testing.T) {
	res, err := Predict(points(100, 102, 104), 2)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, res.Slope, 1e-9)
	assert.InDelta(t, 100.0, res.Intercept, 1e-9)
	assert.Equal(t, []models.ForecastPoint{{Price: 106}, {Price: 108}}, res.Predictions)
	assert.Equal(t, 107.0, res.PredictedAvg)
	assert.Equal(t, 104.0, res.LastPrice)
	assert.Equal(t, 2.88, res.PctChange)
	assert.Equal(t, models.RecommendBuy, res.Recommendation)
	assert.Equal(t, models.TrendUp, res.Trend)
	assert.Equal(t, 100, res.Confidence)
	assert.Equal(t, ModelName, res.Model)
	assert.Equal(t, 3, res.InputCount)
}

func TestPredictPropagatesTimestamps(t *testing.T) {
	last := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC).UnixMilli()
	in := []models.PricePoint{
		{TS: ts(last - 2*util.DayMillis), Price: 50},
		{TS: ts(last - util.DayMillis), Price: 50},
		{TS: ts(last), Price: 50},
	}

	res, err := Predict(in, 3)
	require.NoError(t, err)
	require.Len(t, res.Predictions, 3)
	for d, p := range res.Predictions {
		require.NotNil(t, p.TS)
		assert.Equal(t, last+int64(d+1)*util.DayMillis, *p.TS)
		assert.Equal(t, 50.0, p.Price)
	}
	assert.Equal(t, models.TrendFlat, res.Trend)
	assert.Equal(t, models.RecommendHold, res.Recommendation)
	assert.Zero(t, res.Slope)
}

func TestPredictFallingSeriesSaysWait(t *testing.T) {
	res, err := Predict(points(120, 115, 110, 105), 0)
	require.NoError(t, err)
	assert.Len(t, res.Predictions, DefaultHorizon)
	assert.Equal(t, models.RecommendWait, res.Recommendation)
	assert.Equal(t, models.TrendDown, res.Trend)
	assert.Nil(t, res.Predictions[0].TS)
}

func TestPredictConfidenceDropsWithNoise(t *testing.T) {
	smooth, err := Predict(points(10, 11, 12, 13, 14), 1)
	require.NoError(t, err)
	noisy, err := Predict(points(10, 30, 5, 25, 8), 1)
	require.NoError(t, err)

	assert.Equal(t, 100, smooth.Confidence)
	assert.Less(t, noisy.Confidence, smooth.Confidence)
	assert.GreaterOrEqual(t, noisy.Confidence, 0)
}

func TestPredictValidation(t *testing.T) {
	cases := map[string][]models.PricePoint{
		"none":     nil,
		"two":      points(1, 2),
		"zero":     points(1, 0, 2),
		"negative": points(1, -5, 2),
		"nan":      points(1, math.NaN(), 2),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := Predict(in, 7)
			assert.Nil(t, res)
			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "prices", ve.Field)
		})
	}

	_, err := Predict(points(1, 2), 7)
	assert.EqualError(t, err, "Please provide at least 3 historical price points: [{ts, price}, ...]")
}

func TestFromObservations(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	pts := FromObservations([]*models.PriceObservation{{Price: 9.99, ObservedAt: at}, nil})
	require.Len(t, pts, 1)
	assert.Equal(t, 9.99, pts[0].Price)
	assert.Equal(t, at.UnixMilli(), *pts[0].TS)
}
