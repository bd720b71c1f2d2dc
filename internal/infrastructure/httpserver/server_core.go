package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/ports"
	customMiddleware "github.com/avatarctic/docflow/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
	// MaxUploadBytes caps the request body of document uploads.
	MaxUploadBytes int64
}

// ServerDeps lists the services behind the API. Scheduler may be nil when the
// in-process scheduler is disabled.
type ServerDeps struct {
	AuthService        ports.AuthService
	DocumentService    ports.DocumentService
	ImageService       ports.ImageService
	ReminderService    ports.ReminderService
	WebhookService     ports.WebhookService
	RateLimiterService ports.RateLimiterService
	Scheduler          ports.Scheduler
	HealthCheckers     []ports.HealthChecker
	CronToken          string
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	authSvc        ports.AuthService
	documentSvc    ports.DocumentService
	imageSvc       ports.ImageService
	reminderSvc    ports.ReminderService
	webhookSvc     ports.WebhookService
	scheduler      ports.Scheduler
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
	now            func() time.Time
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	if serverConfig == nil {
		serverConfig = &ServerConfig{}
	}
	if serverConfig.MaxUploadBytes <= 0 {
		serverConfig.MaxUploadBytes = 20 << 20
	}

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		authSvc:        deps.AuthService,
		documentSvc:    deps.DocumentService,
		imageSvc:       deps.ImageService,
		reminderSvc:    deps.ReminderService,
		webhookSvc:     deps.WebhookService,
		scheduler:      deps.Scheduler,
		healthCheckers: deps.HealthCheckers,
		now:            time.Now,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.AuthService,
			deps.RateLimiterService,
			logger,
			deps.CronToken,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
