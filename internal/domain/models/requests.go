package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeReviewsRequest struct {
	URL     string   `json:"url" validate:"omitempty,product_url"`
	Reviews []string `json:"reviews" validate:"omitempty,max=1000"`
	Limit   int      `json:"limit" default:"20" validate:"gte=1,lte=200"`
	Page    int      `json:"page" validate:"gte=0"`
}

type SummarizeReviewsRequest struct {
	Reviews    []string `json:"reviews" validate:"required,min=1,max=1000"`
	TargetLang string   `json:"targetLang" validate:"omitempty,max=35"`
}

type PredictPriceRequest struct {
	Prices []PricePoint `json:"prices"`
	URL    string       `json:"url" validate:"omitempty,product_url"`
	Days   int          `json:"days" default:"7" validate:"gte=1,lte=365"`
}

type ChatRequest struct {
	Messages   []ChatMessage `json:"messages" validate:"required,dive"`
	TargetLang string        `json:"targetLang"`
	ProductURL string        `json:"productUrl" validate:"omitempty,product_url"`
}

type RefreshPriceRequest struct {
	URL string `json:"url" validate:"required,product_url"`
}

type RefreshPriceResponse struct {
	Queued  bool   `json:"queued"`
	URL     string `json:"url"`
	Pending int64  `json:"pending"`
}
