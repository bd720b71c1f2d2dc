package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/avatarctic/docflow/internal/core/domain/billing"
	"github.com/avatarctic/docflow/internal/core/domain/messaging"
	"github.com/avatarctic/docflow/internal/core/domain/reminder"
	"github.com/avatarctic/docflow/internal/core/ports"
)

// Channel labels for the reminders counter.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
	ChannelNone     = "none"
)

var ErrUnknownReminderKind = errors.New("unknown reminder kind")

// ReminderConfig tunes who gets reminded and how.
type ReminderConfig struct {
	MinOutstanding float64
	// Development sends only to DevClientName, always at DevReceiverNumber.
	Development       bool
	DevClientName     string
	DevReceiverNumber string
	Concurrency       int
	Location          *time.Location
	PaymentTemplate   string
	FinalTemplate     string
}

// ReminderService sends payment and final reminders to clients with overdue balances.
type ReminderService struct {
	billing   ports.BillingClient
	messenger ports.Messenger
	email     ports.EmailService
	cfg       ReminderConfig
	sent      *prometheus.CounterVec
	logger    *logrus.Logger
	now       func() time.Time
}

// NewReminderService builds the service. email and sent may be nil.
func NewReminderService(billingClient ports.BillingClient, messenger ports.Messenger, email ports.EmailService, cfg ReminderConfig, sent *prometheus.CounterVec, logger *logrus.Logger) *ReminderService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.PaymentTemplate == "" {
		cfg.PaymentTemplate = "payment_reminder"
	}
	if cfg.FinalTemplate == "" {
		cfg.FinalTemplate = "final_reminder"
	}
	return &ReminderService{
		billing:   billingClient,
		messenger: messenger,
		email:     email,
		cfg:       cfg,
		sent:      sent,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ReminderService) SendPaymentReminders(ctx context.Context) (*reminder.Report, error) {
	return s.Send(ctx, reminder.KindPayment)
}

func (s *ReminderService) SendFinalReminders(ctx context.Context) (*reminder.Report, error) {
	return s.Send(ctx, reminder.KindFinal)
}

// Send runs one batch. Per-client failures are counted in the report; only a
// failure to load clients is returned as an error.
func (s *ReminderService) Send(ctx context.Context, kind reminder.Kind) (*reminder.Report, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReminderKind, kind)
	}
	log := s.entry().WithField("kind", kind)
	log.Info("sending reminders")

	overdue := true
	filter := &billing.ClientFilter{HasOverdueInvoice: &overdue}
	if s.cfg.Development {
		// The dev client is reminded whatever its balance.
		filter = nil
	}
	clients, err := s.billing.FetchClients(ctx, filter)
	if err != nil {
		log.WithError(err).Error("failed to fetch clients")
		return nil, fmt.Errorf("fetch clients: %w", err)
	}

	due := reminder.DueDate(kind, s.now().In(s.cfg.Location)).Format(reminder.DateLayout)
	report := &reminder.Report{Kind: kind}

	if s.cfg.Development {
		s.sendDevelopment(ctx, kind, clients, due, report)
		return report, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, c := range clients {
		if !s.eligible(c) {
			continue
		}
		report.Considered++
		g.Go(func() error {
			channel, err := s.remind(gctx, kind, c, due)
			mu.Lock()
			defer mu.Unlock()
			s.tally(report, kind, channel, err)
			if err != nil {
				log.WithError(err).WithField("client_id", c.ID).Warn("reminder failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	log.WithFields(logrus.Fields{
		"considered": report.Considered,
		"sent":       report.Sent,
		"emailed":    report.Emailed,
		"skipped":    report.Skipped,
		"failed":     report.Failed,
	}).Info("reminders completed")
	return report, nil
}

func (s *ReminderService) eligible(c billing.Client) bool {
	return c.HasOverdueInvoice && c.AccountOutstanding > s.cfg.MinOutstanding
}

func (s *ReminderService) sendDevelopment(ctx context.Context, kind reminder.Kind, clients []billing.Client, due string, report *reminder.Report) {
	log := s.entry().WithField("kind", kind)
	var target *billing.Client
	for i := range clients {
		if strings.EqualFold(clients[i].DisplayName(), strings.TrimSpace(s.cfg.DevClientName)) {
			target = &clients[i]
			break
		}
	}
	if target == nil || s.cfg.DevReceiverNumber == "" {
		log.WithField("client", s.cfg.DevClientName).Error("development reminder client or receiver number not found")
		return
	}
	report.Considered = 1
	err := s.messenger.SendTemplate(ctx, s.cfg.DevReceiverNumber, s.templateName(kind), messaging.BodyText(s.parameters(kind, *target, due)...))
	s.tally(report, kind, ChannelWhatsApp, err)
	if err != nil {
		log.WithError(err).Warn("development reminder failed")
		return
	}
	log.WithField("client", target.DisplayName()).Info("development reminder sent")
}

// remind contacts one client over WhatsApp, or by email when the primary
// contact has no phone number. It returns the channel used.
func (s *ReminderService) remind(ctx context.Context, kind reminder.Kind, c billing.Client, due string) (string, error) {
	contact, ok := c.PrimaryContact()
	switch {
	case ok && contact.Phone != "":
		return ChannelWhatsApp, s.messenger.SendTemplate(ctx, contact.Phone, s.templateName(kind), messaging.BodyText(s.parameters(kind, c, due)...))
	case ok && contact.Email != "" && s.email != nil:
		return ChannelEmail, s.email.SendReminder(ctx, ports.ReminderEmail{
			To:      contact.Email,
			Name:    c.DisplayName(),
			Kind:    kind,
			Amount:  s.amount(kind, c),
			DueDate: due,
		})
	default:
		return ChannelNone, nil
	}
}

func (s *ReminderService) tally(r *reminder.Report, kind reminder.Kind, channel string, err error) {
	outcome := "sent"
	switch {
	case err != nil:
		r.Failed++
		outcome = "failed"
	case channel == ChannelNone:
		r.Skipped++
		outcome = "skipped"
	case channel == ChannelEmail:
		r.Emailed++
	default:
		r.Sent++
	}
	if s.sent != nil {
		s.sent.WithLabelValues(string(kind), channel, outcome).Inc()
	}
}

func (s *ReminderService) templateName(kind reminder.Kind) string {
	if kind == reminder.KindFinal {
		return s.cfg.FinalTemplate
	}
	return s.cfg.PaymentTemplate
}

// parameters are the template body values: name, amount, due date.
func (s *ReminderService) parameters(kind reminder.Kind, c billing.Client, due string) []string {
	return []string{c.DisplayName(), s.amount(kind, c), due}
}

// amount quotes the account balance for payment reminders and the absolute
// outstanding amount for final ones.
func (s *ReminderService) amount(kind reminder.Kind, c billing.Client) string {
	v := c.AccountBalance
	if kind == reminder.KindFinal {
		v = math.Abs(c.AccountOutstanding)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *ReminderService) entry() *logrus.Entry {
	if s.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		return logrus.NewEntry(l)
	}
	return logrus.NewEntry(s.logger)
}
