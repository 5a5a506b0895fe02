package models

import "time"

// PricePoint is one historical sample. TS is epoch milliseconds.
type PricePoint struct {
	TS    *int64  `json:"ts,omitempty"`
	Price float64 `json:"price"`
}

// ForecastPoint carries a null ts when the input had none.
type ForecastPoint struct {
	TS    *int64  `json:"ts"`
	Price float64 `json:"price"`
}

const (
	RecommendBuy  = "buy"
	RecommendWait = "wait"
	RecommendHold = "hold"

	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

type PredictionResult struct {
	Model          string          `json:"model"`
	Slope          float64         `json:"slope"`
	Intercept      float64         `json:"intercept"`
	RMSE           float64         `json:"rmse"`
	Confidence     int             `json:"confidence"`
	PredictedAvg   float64         `json:"predictedAvg"`
	LastPrice      float64         `json:"lastPrice"`
	PctChange      float64         `json:"pctChange"`
	Recommendation string          `json:"recommendation"`
	Trend          string          `json:"trend"`
	Predictions    []ForecastPoint `json:"predictions"`
	InputCount     int             `json:"inputCount"`
}

// PriceObservation is a scraped product price, the unit of price history.
type PriceObservation struct {
	EventID    string    `json:"event_id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Price      float64   `json:"price"`
	Raw        string    `json:"raw"`
	ObservedAt time.Time `json:"observed_at"`
}
