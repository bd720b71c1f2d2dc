// Package bootstrap builds the pieces shared by the server and the operator CLI.
package bootstrap

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/docflow/configs"
	"github.com/avatarctic/docflow/internal/application/services"
	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/avatarctic/docflow/internal/infrastructure/email"
	"github.com/avatarctic/docflow/internal/infrastructure/whatsapp"
)

// NewLogger returns a logger writing to stderr in the configured format and level.
func NewLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}

// LoadLocation resolves an IANA zone name, falling back to UTC.
func LoadLocation(name string, logger *logrus.Logger) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if logger != nil {
			logger.WithError(err).WithField("timezone", name).Warn("unknown timezone, using UTC")
		}
		return time.UTC
	}
	return loc
}

// ReminderConfig maps the environment onto the reminder service settings.
func ReminderConfig(cfg *config.Config, logger *logrus.Logger) services.ReminderConfig {
	return services.ReminderConfig{
		MinOutstanding:    cfg.Reminder.MinOutstanding,
		Development:       cfg.Server.Environment == "development",
		DevClientName:     cfg.Reminder.DevClientName,
		DevReceiverNumber: cfg.Reminder.DevReceiverNumber,
		Concurrency:       cfg.Reminder.Concurrency,
		Location:          LoadLocation(cfg.Reminder.Timezone, logger),
		PaymentTemplate:   cfg.Reminder.PaymentTemplateName,
		FinalTemplate:     cfg.Reminder.FinalTemplateName,
	}
}

// NewReminderService wires WhatsApp and the SendGrid fallback around billing.
// The email channel is left out when no SendGrid key is configured.
func NewReminderService(cfg *config.Config, billing ports.BillingClient, sent *prometheus.CounterVec, logger *logrus.Logger) (*services.ReminderService, *whatsapp.Client, error) {
	messenger := whatsapp.NewClient(&cfg.WhatsApp, logger)

	var emailSvc ports.EmailService
	if cfg.Email.SendGridAPIKey != "" {
		svc, err := email.NewEmailService(&cfg.Email, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("email service: %w", err)
		}
		emailSvc = svc
	} else if logger != nil {
		logger.Warn("SENDGRID_API_KEY not set, reminder email fallback disabled")
	}

	svc := services.NewReminderService(billing, messenger, emailSvc, ReminderConfig(cfg, logger), sent, logger)
	return svc, messenger, nil
}
