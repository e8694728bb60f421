package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/transitops/bus-ticketing/internal/pkg/metrics"
)

// Limiter decides whether a principal may make another request on a route.
type Limiter interface {
	Allow(ctx context.Context, name, principal string) (bool, time.Duration, error)
}

// RateLimit throttles requests per client IP. When the limiter itself fails
// the request is let through and the failure is logged.
func RateLimit(limiter Limiter, name string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retryAfter, err := limiter.Allow(c.Request().Context(), name, "ip:"+c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("route", name).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !ok {
				metrics.RateLimitedTotal.WithLabelValues(name).Inc()
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
