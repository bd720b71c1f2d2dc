package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/docflow/configs"
	"github.com/avatarctic/docflow/internal/core/domain/reminder"
	"github.com/avatarctic/docflow/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// sendFunc delivers a message and reports the provider's HTTP status.
type sendFunc func(msg *mail.SGMailV3) (int, error)

// EmailService implements the EmailService interface
type EmailService struct {
	config    *config.EmailConfig
	logger    *logrus.Logger
	send      sendFunc
	templates map[reminder.Kind]*template.Template
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg *config.EmailConfig, logger *logrus.Logger) (ports.EmailService, error) {
	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	return newEmailService(cfg, logger, func(msg *mail.SGMailV3) (int, error) {
		resp, err := client.Send(msg)
		if err != nil {
			return 0, err
		}
		return resp.StatusCode, nil
	})
}

func newEmailService(cfg *config.EmailConfig, logger *logrus.Logger, send sendFunc) (*EmailService, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	return &EmailService{config: cfg, logger: logger, send: send, templates: templates}, nil
}

// loadTemplates parses the embedded reminder templates
func loadTemplates() (map[reminder.Kind]*template.Template, error) {
	files := map[reminder.Kind]string{
		reminder.KindPayment: "templates/payment.html",
		reminder.KindFinal:   "templates/final.html",
	}
	templates := make(map[reminder.Kind]*template.Template, len(files))
	for kind, file := range files {
		tmpl, err := template.ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		templates[kind] = tmpl
	}
	return templates, nil
}

// ReminderEmailData holds data for the reminder templates
type ReminderEmailData struct {
	CompanyName string
	Name        string
	Amount      string
	DueDate     string
}

// SendReminder emails the same facts the WhatsApp template would carry.
func (e *EmailService) SendReminder(ctx context.Context, msg ports.ReminderEmail) error {
	tmpl, ok := e.templates[msg.Kind]
	if !ok {
		return fmt.Errorf("template for %s reminder not found", msg.Kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ReminderEmailData{
		CompanyName: e.config.CompanyName,
		Name:        msg.Name,
		Amount:      msg.Amount,
		DueDate:     msg.DueDate,
	}); err != nil {
		return fmt.Errorf("failed to render %s reminder: %w", msg.Kind, err)
	}

	subject := fmt.Sprintf("Payment reminder - %s", e.config.CompanyName)
	if msg.Kind == reminder.KindFinal {
		subject = fmt.Sprintf("Final payment reminder - %s", e.config.CompanyName)
	}
	return e.sendEmail(msg.To, msg.Name, subject, buf.String())
}

// sendEmail sends an email using SendGrid
func (e *EmailService) sendEmail(to, name, subject, htmlContent string) error {
	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail(name, to), "", htmlContent)

	status, err := e.send(message)
	if err == nil && status >= 300 {
		err = fmt.Errorf("sendgrid responded with status %d", status)
	}
	if err != nil {
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).WithError(err).Error("Failed to send email")
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{"to": to, "subject": subject, "status_code": status}).Info("Email sent successfully")
	}
	return nil
}
