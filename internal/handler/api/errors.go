package api

import (
	"errors"
	"net/http"
	"time"

	"SmartShop/internal/domain/errs"
	"SmartShop/internal/service/metrics"
	xhttp "SmartShop/pkg/http"
	applogger "SmartShop/pkg/logger"

	"github.com/labstack/echo/v4"
)

// toAppError maps domain errors onto the HTTP error envelope.
func toAppError(err error) *xhttp.AppError {
	var (
		appErr *xhttp.AppError
		ve     *errs.ValidationError
		rl     *errs.RateLimitError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &ve):
		return xhttp.NewAppError("ERR_VALIDATION", ve.Field, ve.Message, http.StatusBadRequest)
	case errors.As(err, &rl):
		return xhttp.TooManyRequestsError(rl.Error(), rl.RetryAfter)
	case errors.Is(err, errs.ErrUpstream):
		return xhttp.BadGatewayError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError(err.Error()).WithError(err)
	}
}

// observe records the endpoint latency; call it deferred.
func observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func badRequest(c echo.Context, endpoint string, verr interface{}) error {
	metrics.EndpointErrors.WithLabelValues(endpoint, "ERR_VALIDATION").Inc()
	return xhttp.BadRequestResponse(c, verr)
}

func fail(c echo.Context, log *applogger.Logger, endpoint string, err error) error {
	appErr := toAppError(err)
	metrics.EndpointErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		log.Error(endpoint+" usecase error", applogger.Error(err))
	} else {
		log.Warn(endpoint+" rejected", applogger.String("code", appErr.Code), applogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
