package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/infrastructure/httpserver/helpers"
)

const (
	msgBadCronAuth   = "Bad authentication for CRON request"
	msgServerMisconf = "Server configuration error"
)

// CronAuthMiddleware guards the reminder triggers with a shared bearer token.
type CronAuthMiddleware struct {
	token  string
	logger *logrus.Logger
}

func NewCronAuthMiddleware(token string, logger *logrus.Logger) *CronAuthMiddleware {
	return &CronAuthMiddleware{token: token, logger: logger}
}

func (m *CronAuthMiddleware) RequireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, ok := helpers.GetBearerToken(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": msgBadCronAuth})
			}
			if m.token == "" {
				if m.logger != nil {
					m.logger.Error("cron trigger token is not configured")
				}
				return c.JSON(http.StatusInternalServerError, map[string]string{"message": msgServerMisconf})
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(m.token)) != 1 {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path}).Warn("cron trigger rejected")
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": msgBadCronAuth})
			}
			return next(c)
		}
	}
}
