package api

import (
	"net/http"
	"time"

	"SmartShop/internal/domain/models"
	"SmartShop/internal/service/metrics"
	"SmartShop/internal/usecase"
	xhttp "SmartShop/pkg/http"
	applogger "SmartShop/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RefreshHandler queues background price refreshes.
type RefreshHandler struct {
	logger    *applogger.Logger
	refresher *usecase.PriceRefresher
	limit     []echo.MiddlewareFunc
}

func NewRefreshHandler(logger *applogger.Logger, refresher *usecase.PriceRefresher, limit ...echo.MiddlewareFunc) *RefreshHandler {
	metrics.Register()
	return &RefreshHandler{logger: logger, refresher: refresher, limit: limit}
}

func (h *RefreshHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/refresh-price", h.RefreshPrice, h.limit...)
}

func (h *RefreshHandler) RefreshPrice(c echo.Context) error {
	const endpoint = "refresh_price"
	defer observe(endpoint, time.Now())

	req := &models.RefreshPriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return badRequest(c, endpoint, verr)
	}

	res, err := h.refresher.Schedule(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.logger, endpoint, err)
	}
	return c.JSON(http.StatusAccepted, res)
}
