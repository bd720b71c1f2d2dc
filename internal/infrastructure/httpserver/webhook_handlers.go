package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/docflow/internal/core/domain/messaging"
)

func (s *Server) verifyWebhook(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	if mode == "" && token == "" {
		return c.String(http.StatusOK, "Verification endpoint")
	}
	reply, ok := s.webhookSvc.Verify(mode, token, c.QueryParam("hub.challenge"))
	if !ok {
		return c.String(http.StatusForbidden, "Forbidden")
	}
	return c.String(http.StatusOK, reply)
}

// receiveWebhook always answers 200 so Meta does not redeliver.
func (s *Server) receiveWebhook(c echo.Context) error {
	var n messaging.WebhookNotification
	if err := c.Bind(&n); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("undecodable webhook payload")
		}
		return c.JSON(http.StatusOK, map[string]string{"status": messaging.WebhookStatusError})
	}
	status := s.webhookSvc.Handle(c.Request().Context(), &n)
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}
