package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/docflow/configs"
	"github.com/avatarctic/docflow/internal/application/services"
	"github.com/avatarctic/docflow/internal/bootstrap"
	"github.com/avatarctic/docflow/internal/core/domain/reminder"
	"github.com/avatarctic/docflow/internal/core/layout"
	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/avatarctic/docflow/internal/infrastructure/db"
	"github.com/avatarctic/docflow/internal/infrastructure/health"
	"github.com/avatarctic/docflow/internal/infrastructure/httpserver"
	"github.com/avatarctic/docflow/internal/infrastructure/imagegen"
	"github.com/avatarctic/docflow/internal/infrastructure/redis"
	"github.com/avatarctic/docflow/internal/infrastructure/render"
	"github.com/avatarctic/docflow/internal/infrastructure/repositories"
	"github.com/avatarctic/docflow/internal/infrastructure/scheduler"
	"github.com/avatarctic/docflow/internal/infrastructure/uisp"
	"github.com/avatarctic/docflow/internal/infrastructure/vision"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := bootstrap.NewLogger(cfg.Log)
	logger.Info("Starting docflow...")

	database, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()
	logger.Info("Connected to database successfully")

	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis successfully")

	redisCache := redis.NewRedisCache(redisClient, "appcache")
	rateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)
	userRepo := repositories.NewUserRepository(database, logger)
	documentRepo := repositories.NewDocumentRepository(database, logger)

	authService := services.NewAuthService(userRepo, &cfg.JWT, &cfg.Auth, logger)
	rateLimiterService := services.NewRateLimiterService(rateLimitRepo, &services.RateLimiterConfig{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window,
		KeyPrefix:   cfg.RateLimit.KeyPrefix,
	}, httpserver.GetRateLimitDecisions(), logger)

	openaiClient := openai.NewClient(cfg.OpenAI.APIKey)

	ctx := context.Background()
	extractor, closeExtractor, err := newExtractor(ctx, cfg, openaiClient, logger)
	if err != nil {
		logger.Fatal("Failed to initialize text extractor:", err)
	}
	defer closeExtractor()

	measurer := render.NewHelveticaMeasurer()
	documentService := services.NewDocumentService(documentRepo, extractor, []ports.DocumentRenderer{
		render.NewPDFRenderer(layout.DefaultConfig(), measurer),
		render.NewWordRenderer(),
	}, services.DocumentServiceConfig{MaxUploadBytes: cfg.Server.MaxUploadBytes}, logger)

	imageService := services.NewImageService(imagegen.NewGenerator(openaiClient, &cfg.OpenAI, logger), redisCache, logger)

	billingClient := repositories.NewCachingBillingClient(uisp.NewClient(&cfg.UISP, logger), redisCache, cfg.UISP.CacheTTL)
	reminderService, messenger, err := bootstrap.NewReminderService(cfg, billingClient, httpserver.GetRemindersTotal(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize reminder service:", err)
	}
	webhookService := services.NewWebhookService(messenger, cfg.WhatsApp.VerifyToken, cfg.WhatsApp.AutoReply, logger)

	var sched ports.Scheduler
	if cfg.Cron.Enabled {
		cs, err := startScheduler(cfg, reminderService, logger)
		if err != nil {
			logger.Fatal("Failed to start scheduler:", err)
		}
		defer cs.StopAll()
		sched = cs
	}

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}

	deps := httpserver.ServerDeps{
		AuthService:        authService,
		DocumentService:    documentService,
		ImageService:       imageService,
		ReminderService:    reminderService,
		WebhookService:     webhookService,
		RateLimiterService: rateLimiterService,
		Scheduler:          sched,
		HealthCheckers:     []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)},
		CronToken:          cfg.Cron.TriggerToken,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

// newExtractor picks the OCR backend from VISION_PROVIDER.
func newExtractor(ctx context.Context, cfg *config.Config, client *openai.Client, logger *logrus.Logger) (ports.TextExtractor, func(), error) {
	if cfg.Vision.Provider == "google" {
		g, err := vision.NewGoogleExtractor(ctx, &cfg.Vision)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Google Cloud Vision for text extraction")
		return g, func() { _ = g.Close() }, nil
	}
	logger.Info("Using OpenAI vision for text extraction")
	return vision.NewOpenAIExtractor(client, cfg.OpenAI.VisionModel, cfg.OpenAI.MaxTokens), func() {}, nil
}

func startScheduler(cfg *config.Config, reminders ports.ReminderService, logger *logrus.Logger) (*scheduler.CronScheduler, error) {
	cs := scheduler.New(bootstrap.LoadLocation(cfg.Cron.Timezone, logger), logger)
	jobs := []struct {
		name string
		spec string
		kind reminder.Kind
	}{
		{"payment-reminder", cfg.Cron.PaymentSchedule, reminder.KindPayment},
		{"final-reminder", cfg.Cron.FinalSchedule, reminder.KindFinal},
	}
	for _, j := range jobs {
		kind := j.kind
		if err := cs.Schedule(j.name, j.spec, func(ctx context.Context) error {
			_, err := reminders.Send(ctx, kind)
			return err
		}); err != nil {
			return nil, err
		}
	}
	cs.Start()
	logger.WithField("jobs", cs.JobNames()).Info("In-process scheduler started")
	return cs, nil
}
