package scraper

import (
	"context"
	"fmt"
	"time"

	"SmartShop/internal/domain/models"
	"SmartShop/internal/domain/repository"
	"SmartShop/internal/domain/service"
	"SmartShop/internal/services/extractor"
	applogger "SmartShop/pkg/logger"
)

// Scraper fetches a product page and extracts reviews and metadata from it.
type Scraper struct {
	fetcher   service.Fetcher
	extractor *extractor.Extractor
	metrics   repository.Metrics
	log       *applogger.Logger
}

func New(f service.Fetcher, x *extractor.Extractor, m repository.Metrics, l *applogger.Logger) *Scraper {
	if l == nil {
		l = applogger.Nop()
	}
	return &Scraper{fetcher: f, extractor: x, metrics: m, log: l}
}

var _ service.Scraper = (*Scraper)(nil)

// Scrape never fails. A page that cannot be fetched yields zero reviews and
// the diagnostics explaining why.
func (s *Scraper) Scrape(ctx context.Context, url string, limit int) *models.ScrapeResult {
	start := time.Now()
	fr := s.fetcher.Fetch(ctx, url)

	res := &models.ScrapeResult{
		Logs:        append([]string(nil), fr.Logs...),
		FetchMethod: fr.Method,
	}
	if fr.HTML != "" {
		ex := s.extractor.Extract(fr.HTML, limit)
		res.Reviews = ex.Reviews
		res.ProductTitle = ex.Title
		res.ProductDescription = ex.Description
		res.ProductImage = ex.Image
		res.ProductPrice = ex.Price
		res.Logs = append(res.Logs, ex.Logs...)
	}
	if res.Reviews == nil {
		res.Reviews = []string{}
	}
	res.Logs = append(res.Logs, fmt.Sprintf("🎯 Total reviews extracted: %d (method: %s)", len(res.Reviews), fr.Method))

	if s.metrics != nil {
		s.metrics.RecordFetch(fr.Method, len(res.Reviews))
		s.metrics.RecordLatency("scrape", time.Since(start))
	}
	s.log.Info("page scraped",
		applogger.String("url", url),
		applogger.String("method", fr.Method),
		applogger.Int("reviews", len(res.Reviews)),
		applogger.Duration("took", time.Since(start)))
	return res
}
