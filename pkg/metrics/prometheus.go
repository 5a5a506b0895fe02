package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheLookups    *prometheus.CounterVec
	rateLimited     prometheus.Counter
	fetches         *prometheus.CounterVec
	reviewsSeen     prometheus.Histogram
	fakeRatio       prometheus.Histogram
	observations    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	upstreamLatency *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartshop_review_cache_lookups_total",
				Help: "Review cache lookups by result",
			},
			[]string{"result"},
		),
		rateLimited: f.NewCounter(
			prometheus.CounterOpts{
				Name: "smartshop_rate_limited_total",
				Help: "Requests rejected by the sliding-window limiter",
			},
		),
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartshop_fetch_total",
				Help: "Product page fetches by method",
			},
			[]string{"method"},
		),
		reviewsSeen: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "smartshop_reviews_extracted",
				Help:    "Reviews extracted per fetched page",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200},
			},
		),
		fakeRatio: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "smartshop_fake_review_ratio",
				Help:    "Share of reviews classified as fake per analysis",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		observations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartshop_price_observations_total",
				Help: "Price observations recorded per history backend",
			},
			[]string{"backend"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartshop_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartshop_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartshop_llm_request_duration_seconds",
				Help:    "Language model request latency",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"operation", "result"},
		),
	}
}

func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordRateLimited() {
	r.rateLimited.Inc()
}

// RecordFetch records a fetch outcome; method is "scrape.do", "direct" or "none".
func (r *Recorder) RecordFetch(method string, reviews int) {
	r.fetches.WithLabelValues(method).Inc()
	r.reviewsSeen.Observe(float64(reviews))
}

func (r *Recorder) RecordAnalysis(total, fake int) {
	if total == 0 {
		return
	}
	r.fakeRatio.Observe(float64(fake) / float64(total))
}

func (r *Recorder) RecordObservation(backend string) {
	r.observations.WithLabelValues(backend).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordUpstream records a language model call.
func (r *Recorder) RecordUpstream(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.upstreamLatency.WithLabelValues(op, result).Observe(d.Seconds())
}
