package summarizer

import (
	"context"
	"errors"
	"strings"
	"time"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/domain/models"
	"SmartShop/internal/domain/repository"
	"SmartShop/internal/domain/service"
	applogger "SmartShop/pkg/logger"
	"SmartShop/pkg/util"
)

const sampleReviews = 3

// Summarizer builds an extractive summary and mines pros and cons. The
// translator is optional; without it no translation is attempted.
type Summarizer struct {
	translator service.Translator
	topK       int
	metrics    repository.Metrics
	log        *applogger.Logger
}

type Option func(*Summarizer)

func WithTranslator(t service.Translator) Option {
	return func(s *Summarizer) { s.translator = t }
}

func WithTopSentences(k int) Option {
	return func(s *Summarizer) {
		if k > 0 {
			s.topK = k
		}
	}
}

func WithMetrics(m repository.Metrics) Option {
	return func(s *Summarizer) { s.metrics = m }
}

func New(l *applogger.Logger, opts ...Option) *Summarizer {
	if l == nil {
		l = applogger.Nop()
	}
	s := &Summarizer{topK: 3, log: l.With(applogger.String("component", "summarizer"))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Summarizer) Summarize(ctx context.Context, reviews []string, targetLang string) (*models.SummaryResult, error) {
	if len(reviews) == 0 {
		return nil, errs.Validation("reviews", "reviews array required")
	}
	start := time.Now()

	n := sampleReviews
	if len(reviews) < n {
		n = len(reviews)
	}
	detected := DetectLanguage(strings.Join(reviews[:n], " "))
	summary := ExtractiveSummary(reviews, s.topK)
	pros, cons := MineProsCons(reviews)

	res := &models.SummaryResult{
		LanguageDetected: detected,
		Summary:          summary,
		Pros:             pros,
		Cons:             cons,
		InputCount:       len(reviews),
	}
	if targetLang != "" && targetLang != detected && summary != "" {
		res.TranslatedSummary = s.translate(ctx, summary, targetLang)
	}

	if s.metrics != nil {
		s.metrics.RecordLatency("summarize", time.Since(start))
	}
	return res, nil
}

// translate degrades to nil on any failure.
func (s *Summarizer) translate(ctx context.Context, text, target string) *string {
	if s.translator == nil {
		return nil
	}
	out, err := s.translator.Translate(ctx, text, util.LanguageName(target))
	switch {
	case errors.Is(err, errs.ErrNotConfigured):
		return nil
	case err != nil:
		s.log.Warn("translation failed", applogger.String("target", target), applogger.Error(err))
		if s.metrics != nil {
			s.metrics.RecordError("translate")
		}
		return nil
	case out == "":
		return nil
	}
	return &out
}
