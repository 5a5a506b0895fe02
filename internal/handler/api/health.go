package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	applogger "SmartShop/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	logger  *applogger.Logger
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthHandler(logger *applogger.Logger, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{logger: logger, checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz answers 200 "ok" when every configured dependency responds and 503
// "degraded" otherwise.
func (h *HealthHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	res := healthResponse{Status: "ok"}
	if len(names) > 0 {
		res.Checks = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", applogger.String("dependency", name), applogger.Error(err))
			res.Checks[name] = err.Error()
			res.Status = "degraded"
			continue
		}
		res.Checks[name] = "ok"
	}

	status := http.StatusOK
	if res.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, res)
}
