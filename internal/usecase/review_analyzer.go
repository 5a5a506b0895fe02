package usecase

import (
	"context"
	"fmt"
	"time"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"
	drepo "SmartShop/internal/domain/repository"
	"SmartShop/internal/domain/service"
	"SmartShop/internal/service/cache"
	"SmartShop/internal/services/classifier"
	"SmartShop/internal/services/fetcher"
	applogger "SmartShop/pkg/logger"
)

// ReviewAnalyzer serves analyze-reviews: it scrapes (through the cache) when
// no reviews are supplied, classifies the full extraction and pages the
// review list.
type ReviewAnalyzer struct {
	products   *ProductLookup
	classifier *classifier.Classifier
	metrics    drepo.Metrics
	log        *applogger.Logger
}

func NewReviewAnalyzer(
	products *ProductLookup,
	cls *classifier.Classifier,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *ReviewAnalyzer {
	return &ReviewAnalyzer{products: products, classifier: cls, metrics: metrics, log: log}
}

func (a *ReviewAnalyzer) Analyze(ctx context.Context, req *models.AnalyzeReviewsRequest) (*models.ReviewReport, error) {
	page := &models.ScrapeResult{Reviews: []string{}, Logs: []string{}}
	switch {
	case len(req.Reviews) > 0:
		page.Reviews = req.Reviews
	case req.URL != "":
		page = a.products.Lookup(ctx, req.URL)
	}

	start := time.Now()
	analysis := a.classifier.Classify(page.Reviews)
	a.metrics.RecordLatency("classify", time.Since(start))
	a.metrics.RecordAnalysis(analysis.TotalReviews, analysis.FakeReviews)

	return &models.ReviewReport{
		Analysis:           analysis,
		ReviewsCount:       len(page.Reviews),
		Page:               req.Page,
		Limit:              req.Limit,
		Reviews:            Paginate(page.Reviews, req.Page, req.Limit),
		Logs:               page.Logs,
		ProductTitle:       page.ProductTitle,
		ProductDescription: page.ProductDescription,
		ProductImage:       page.ProductImage,
		ProductPrice:       page.ProductPrice,
	}, nil
}

// Paginate returns items[page*limit : page*limit+limit], clamped to the slice.
func Paginate(items []string, page, limit int) []string {
	if limit <= 0 || page < 0 || len(items) == 0 || page > (len(items)-1)/limit {
		return []string{}
	}
	start := page * limit
	if start >= len(items) {
		return []string{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ProductLookup resolves a product URL to its extraction, serving repeated
// lookups from the review cache and recording the price of fresh scrapes.
type ProductLookup struct {
	scraper  service.Scraper
	cache    *cache.ReviewCache
	recorder *PriceRecorder
	metrics  drepo.Metrics
	log      *applogger.Logger
	fetchCap int
}

func NewProductLookup(
	scraper service.Scraper,
	c *cache.ReviewCache,
	recorder *PriceRecorder,
	metrics drepo.Metrics,
	log *applogger.Logger,
	fetchCap int,
) *ProductLookup {
	return &ProductLookup{
		scraper:  scraper,
		cache:    c,
		recorder: recorder,
		metrics:  metrics,
		log:      log,
		fetchCap: fetchCap,
	}
}

// Lookup never fails; store errors degrade to a fresh scrape.
func (p *ProductLookup) Lookup(ctx context.Context, url string) *models.ScrapeResult {
	cached, err := p.cache.Get(ctx, url, p.fetchCap)
	if err != nil {
		p.log.Warn("review cache get failed", applogger.String("url", url), applogger.Error(err))
		p.metrics.RecordError("cache_get")
	}
	p.metrics.RecordCacheLookup(cached != nil)
	if cached != nil {
		return cached
	}

	res := p.scraper.Scrape(ctx, url, p.fetchCap)
	if res.FetchMethod == fetcher.MethodNone {
		// nothing was fetched; let the next request try again
		return res
	}
	if err := p.store(ctx, url, res); err != nil {
		p.log.Warn("price observation not recorded", applogger.String("url", url), applogger.Error(err))
	}
	return res.Clone()
}

// Refresh scrapes url bypassing the cache, then caches the result and records
// its price. It fails when no fetch strategy produced a page or the price
// could not be recorded.
func (p *ProductLookup) Refresh(ctx context.Context, url string) (*models.ScrapeResult, error) {
	res := p.scraper.Scrape(ctx, url, p.fetchCap)
	if res.FetchMethod == fetcher.MethodNone {
		return nil, fmt.Errorf("%w: no fetch strategy succeeded for %s", errs.ErrUpstream, url)
	}
	if err := p.store(ctx, url, res); err != nil {
		return nil, fmt.Errorf("record price: %w", err)
	}
	return res.Clone(), nil
}

func (p *ProductLookup) store(ctx context.Context, url string, res *models.ScrapeResult) error {
	if err := p.cache.Put(ctx, url, p.fetchCap, res); err != nil {
		p.log.Warn("review cache put failed", applogger.String("url", url), applogger.Error(err))
		p.metrics.RecordError("cache_put")
	}
	if p.recorder == nil {
		return nil
	}
	return p.recorder.Record(ctx, url, res)
}
