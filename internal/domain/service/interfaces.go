package service

import (
	"context"

	"SmartShop/internal/domain/models"
)

// FetchResult is raw page HTML plus the attempt diagnostics.
type FetchResult struct {
	HTML   string
	Method string
	Logs   []string
}

// Fetcher retrieves product page HTML. Attempt failures are reported in Logs,
// never as an error; exhaustion yields empty HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// Scraper fetches and extracts a product page.
type Scraper interface {
	Scrape(ctx context.Context, url string, limit int) *models.ScrapeResult
}

// Translator translates a text into the named language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// ChatStreamer streams completion deltas. Deltas is unbuffered and closed when
// the stream ends; Errs yields at most one error. Cancelling ctx closes the
// upstream connection.
type ChatStreamer interface {
	Stream(ctx context.Context, req *models.ChatCompletionRequest) (<-chan string, <-chan error)
}
