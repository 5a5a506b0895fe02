package middleware

import (
	"context"
	"time"

	drepo "SmartShop/internal/domain/repository"
	xhttp "SmartShop/pkg/http"
	applogger "SmartShop/pkg/logger"

	"github.com/labstack/echo/v4"
)

const rateLimitedMessage = "Rate limit exceeded. Please try again later."

// Limiter is the sliding-window check the middleware consults per client.
type Limiter interface {
	IsLimited(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit rejects clients over their window with 429 and Retry-After.
// Clients are keyed by the real IP. Store failures let the request through.
func RateLimit(l Limiter, metrics drepo.Metrics, log *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			limited, retry, err := l.IsLimited(c.Request().Context(), key)
			if err != nil {
				log.Warn("rate limit check failed", applogger.String("client", key), applogger.Error(err))
				metrics.RecordError("rate_limit_store")
				return next(c)
			}
			if limited {
				metrics.RecordRateLimited()
				log.Info("rate limited",
					applogger.String("client", key),
					applogger.String("path", c.Path()),
					applogger.Duration("retry_after", retry))
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError(rateLimitedMessage, retry))
			}
			return next(c)
		}
	}
}
