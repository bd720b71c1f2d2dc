package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/domain/reminder"
	"github.com/avatarctic/docflow/internal/core/ports"
)

func (s *Server) triggerPaymentReminders(c echo.Context) error {
	return s.triggerReminders(c, reminder.KindPayment)
}

func (s *Server) triggerFinalReminders(c echo.Context) error {
	return s.triggerReminders(c, reminder.KindFinal)
}

func (s *Server) triggerReminders(c echo.Context, kind reminder.Kind) error {
	report, err := s.reminderSvc.Send(c.Request().Context(), kind)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"kind": kind}).WithError(err).Error("cron reminder run failed")
		}
		return errorJSON(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":   "Cron job triggered successfully",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"report":    report,
	})
}

func (s *Server) cronJobs(c echo.Context) error {
	jobs := []ports.JobStatus{}
	if s.scheduler != nil {
		jobs = s.scheduler.Status()
	}
	return c.JSON(http.StatusOK, map[string]any{
		"enabled": s.scheduler != nil,
		"jobs":    jobs,
	})
}
