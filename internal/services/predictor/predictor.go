package predictor

import (
	"math"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"
	"SmartShop/pkg/util"
)

const (
	ModelName      = "linear_regression_index"
	MinPoints      = 3
	DefaultHorizon = 7

	// Percent change of the forecast average against the last price that
	// flips the recommendation away from hold.
	actionPct = 2.0
)

const minPointsMsg = "Please provide at least 3 historical price points: [{ts, price}, ...]"

// Predict fits ordinary least squares over the point index, not the
// timestamp, and extrapolates horizon future points one day apart.
func Predict(points []models.PricePoint, horizon int) (*models.PredictionResult, error) {
	if len(points) < MinPoints {
		return nil, errs.Validation("prices", minPointsMsg)
	}
	for _, p := range points {
		if p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return nil, errs.Validation("prices", "price must be a positive number, got %v", p.Price)
		}
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	n := len(points)
	nf := float64(n)
	meanX := (nf - 1) / 2
	var meanY float64
	for _, p := range points {
		meanY += p.Price
	}
	meanY /= nf

	var num, den float64
	for i, p := range points {
		dx := float64(i) - meanX
		num += dx * (p.Price - meanY)
		den += dx * dx
	}
	slope := 0.0
	if den != 0 {
		slope = num / den
	}
	intercept := meanY - slope*meanX

	lastTS := points[n-1].TS
	preds := make([]models.ForecastPoint, horizon)
	var predSum float64
	for d := 0; d < horizon; d++ {
		price := util.Round2(slope*float64(n+d) + intercept)
		fp := models.ForecastPoint{Price: price}
		if lastTS != nil {
			ts := *lastTS + int64(d+1)*util.DayMillis
			fp.TS = &ts
		}
		preds[d] = fp
		predSum += price
	}

	var sse float64
	for i, p := range points {
		r := p.Price - (slope*float64(i) + intercept)
		sse += r * r
	}
	rmse := math.Sqrt(sse / nf)
	confidence := int(math.Round((1 - math.Min(1, rmse/meanY)) * 100))

	predictedAvg := predSum / float64(horizon)
	last := points[n-1].Price
	pct := (predictedAvg - last) / last * 100

	rec := models.RecommendHold
	switch {
	case pct <= -actionPct:
		rec = models.RecommendWait
	case pct >= actionPct:
		rec = models.RecommendBuy
	}
	trend := models.TrendFlat
	switch {
	case pct > 0:
		trend = models.TrendUp
	case pct < 0:
		trend = models.TrendDown
	}

	return &models.PredictionResult{
		Model:          ModelName,
		Slope:          slope,
		Intercept:      intercept,
		RMSE:           rmse,
		Confidence:     confidence,
		PredictedAvg:   util.Round2(predictedAvg),
		LastPrice:      util.Round2(last),
		PctChange:      util.Round2(pct),
		Recommendation: rec,
		Trend:          trend,
		Predictions:    preds,
		InputCount:     n,
	}, nil
}

// FromObservations turns stored observations, oldest first, into points.
func FromObservations(obs []*models.PriceObservation) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(obs))
	for _, o := range obs {
		if o == nil {
			continue
		}
		ts := util.ToEpochMillis(o.ObservedAt)
		out = append(out, models.PricePoint{TS: &ts, Price: o.Price})
	}
	return out
}
