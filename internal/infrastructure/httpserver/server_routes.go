package httpserver

import (
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	limited := s.middleware.RateLimit.Handler()
	requireJWT := s.middleware.JWT.RequireJWT()

	auth := api.Group("/auth")
	auth.POST("/signup", s.signup, limited)
	auth.POST("/login", s.login, limited)

	documents := api.Group("/documents", requireJWT)
	documents.POST("/process", s.processDocument, middleware.BodyLimit(bodyLimit(s.config.MaxUploadBytes)))
	documents.GET("", s.listDocuments)
	documents.GET("/:id/pdf", s.downloadPDF)
	documents.GET("/:id/word", s.downloadWord)

	images := api.Group("/images", requireJWT)
	images.POST("/generate", s.generateImage, limited)

	cron := api.Group("/cron", s.middleware.Cron.RequireToken())
	cron.GET("/reminder", s.triggerPaymentReminders)
	cron.GET("/finalreminder", s.triggerFinalReminders)

	whatsapp := api.Group("/whatsapp")
	whatsapp.GET("/webhook", s.verifyWebhook)
	whatsapp.POST("/webhook", s.receiveWebhook)

	admin := api.Group("/admin", requireJWT)
	admin.GET("/allowed-emails", s.allowedEmails)
	admin.GET("/cron/jobs", s.cronJobs)
}
