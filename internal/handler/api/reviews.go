package api

import (
	"time"

	"SmartShop/internal/domain/models"
	"SmartShop/internal/service/metrics"
	"SmartShop/internal/services/summarizer"
	"SmartShop/internal/usecase"
	xhttp "SmartShop/pkg/http"
	applogger "SmartShop/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReviewsHandler serves the review and price analysis endpoints.
type ReviewsHandler struct {
	logger     *applogger.Logger
	analyzer   *usecase.ReviewAnalyzer
	summarizer *summarizer.Summarizer
	forecaster *usecase.PriceForecaster
	limit      []echo.MiddlewareFunc
}

func NewReviewsHandler(
	logger *applogger.Logger,
	analyzer *usecase.ReviewAnalyzer,
	sum *summarizer.Summarizer,
	forecaster *usecase.PriceForecaster,
	limit ...echo.MiddlewareFunc,
) *ReviewsHandler {
	metrics.Register()
	return &ReviewsHandler{
		logger:     logger,
		analyzer:   analyzer,
		summarizer: sum,
		forecaster: forecaster,
		limit:      limit,
	}
}

func (h *ReviewsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze-reviews", h.AnalyzeReviews, h.limit...)
	g.POST("/summarize-reviews", h.SummarizeReviews)
	g.POST("/predict-price", h.PredictPrice)
}

func (h *ReviewsHandler) AnalyzeReviews(c echo.Context) error {
	const endpoint = "analyze_reviews"
	defer observe(endpoint, time.Now())

	req := &models.AnalyzeReviewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return badRequest(c, endpoint, verr)
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.logger, endpoint, err)
	}
	return xhttp.JSONResponse(c, res)
}

func (h *ReviewsHandler) SummarizeReviews(c echo.Context) error {
	const endpoint = "summarize_reviews"
	defer observe(endpoint, time.Now())

	req := &models.SummarizeReviewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return badRequest(c, endpoint, verr)
	}

	res, err := h.summarizer.Summarize(c.Request().Context(), req.Reviews, req.TargetLang)
	if err != nil {
		return fail(c, h.logger, endpoint, err)
	}
	return xhttp.JSONResponse(c, res)
}

func (h *ReviewsHandler) PredictPrice(c echo.Context) error {
	const endpoint = "predict_price"
	defer observe(endpoint, time.Now())

	req := &models.PredictPriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return badRequest(c, endpoint, verr)
	}

	res, err := h.forecaster.Forecast(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.logger, endpoint, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.JSONResponse(c, res)
}
