package models

import "time"

// ScrapeResult is the extraction of one product page. It is never mutated
// after it leaves the pipeline; use Clone before appending to Logs.
type ScrapeResult struct {
	Reviews            []string `json:"reviews"`
	ProductTitle       string   `json:"productTitle"`
	ProductDescription string   `json:"productDescription"`
	ProductImage       string   `json:"productImage"`
	ProductPrice       string   `json:"productPrice"`
	Logs               []string `json:"logs"`
	FetchMethod        string   `json:"fetchMethod"` // "scrape.do", "direct", "browser" or "none"
}

// Clone returns a deep copy so cached payloads stay immutable.
func (r *ScrapeResult) Clone() *ScrapeResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Reviews = append([]string(nil), r.Reviews...)
	out.Logs = append([]string(nil), r.Logs...)
	return &out
}

type CacheEntry struct {
	Timestamp time.Time    `json:"timestamp"`
	Payload   ScrapeResult `json:"payload"`
}

type RateLimitEntry struct {
	Key        string      `json:"key"`
	Timestamps []time.Time `json:"timestamps"`
}

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

type ReviewVerdict struct {
	Index     int      `json:"index"` // 1-based
	Fake      bool     `json:"fake"`
	Flags     []string `json:"flags"`
	Sentiment int      `json:"sentiment"`
	Preview   string   `json:"preview"`
}

type ReviewAnalysis struct {
	TotalReviews     int             `json:"totalReviews"`
	RealReviews      int             `json:"realReviews"`
	FakeReviews      int             `json:"fakeReviews"`
	FakePercentage   int             `json:"fakePercentage"`
	OverallSentiment string          `json:"overallSentiment"`
	SentimentScore   int             `json:"sentimentScore"`
	Summary          string          `json:"summary"`
	DetailedAnalysis string          `json:"detailedAnalysis"`
	Verdicts         []ReviewVerdict `json:"verdicts,omitempty"`
}

// ReviewReport is the analyze-reviews response document.
type ReviewReport struct {
	Analysis           ReviewAnalysis `json:"analysis"`
	ReviewsCount       int            `json:"reviewsCount"`
	Page               int            `json:"page"`
	Limit              int            `json:"limit"`
	Reviews            []string       `json:"reviews"`
	Logs               []string       `json:"logs"`
	ProductTitle       string         `json:"productTitle"`
	ProductDescription string         `json:"productDescription"`
	ProductImage       string         `json:"productImage"`
	ProductPrice       string         `json:"productPrice"`
}
