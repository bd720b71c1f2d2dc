package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/domain/ratelimit"
	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/avatarctic/docflow/internal/infrastructure/httpserver/helpers"
)

// RateLimitMiddleware applies the fixed-window limiter per client address.
type RateLimitMiddleware struct {
	limiter ports.RateLimiterService
	logger  *logrus.Logger
	now     func() time.Time
}

func NewRateLimitMiddleware(limiter ports.RateLimiterService, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, logger: logger, now: time.Now}
}

// Handler consumes one request from the caller's window. Routes mounted without
// a limiter pass through.
func (m *RateLimitMiddleware) Handler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.limiter == nil {
				return next(c)
			}
			identity := helpers.ClientIdentity(c.Request())
			d := m.limiter.Allow(c.Request().Context(), identity)
			// No quota was checked, so there is nothing to advertise.
			if d.FailedOpen {
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(d.RetryAfter(m.now())))
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"identity": identity, "path": c.Request().URL.Path}).Debug("request rate limited")
				}
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": ratelimit.RejectionMessage})
			}
			return next(c)
		}
	}
}
