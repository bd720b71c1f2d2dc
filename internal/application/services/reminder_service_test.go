package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/docflow/internal/core/domain/billing"
	"github.com/avatarctic/docflow/internal/core/domain/messaging"
	"github.com/avatarctic/docflow/internal/core/domain/reminder"
	"github.com/avatarctic/docflow/test/mocks"
)

func reminderClients() []billing.Client {
	return []billing.Client{
		{ID: 1, FirstName: "Ann", LastName: "Lee", HasOverdueInvoice: true, AccountBalance: -42.5, AccountOutstanding: 42.5,
			Contacts: []billing.Contact{{Phone: "+27820000001"}}},
		{ID: 2, CompanyContactFirstName: "Bo", CompanyContactLastName: "Ng", HasOverdueInvoice: true, AccountOutstanding: 120,
			Contacts: []billing.Contact{{Email: "bo@example.com"}}},
		{ID: 3, FirstName: "Cy", HasOverdueInvoice: true, AccountOutstanding: 5,
			Contacts: []billing.Contact{{Phone: "+27820000003"}}},
		{ID: 4, FirstName: "Di", HasOverdueInvoice: false, AccountOutstanding: 500,
			Contacts: []billing.Contact{{Phone: "+27820000004"}}},
		{ID: 5, FirstName: "Ed", HasOverdueInvoice: true, AccountOutstanding: 11},
		{ID: 6, FirstName: "Flo", LastName: "Ray", HasOverdueInvoice: true, AccountOutstanding: 30,
			Contacts: []billing.Contact{{Phone: "+27820000006"}}},
	}
}

func newReminderService(cfg ReminderConfig) (*ReminderService, *mocks.MessengerMock, *mocks.EmailServiceMock, *prometheus.CounterVec) {
	messenger := &mocks.MessengerMock{}
	email := &mocks.EmailServiceMock{}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "reminders_total"}, []string{"kind", "channel", "outcome"})
	if cfg.MinOutstanding == 0 {
		cfg.MinOutstanding = 10
	}
	svc := NewReminderService(&mocks.BillingClientMock{Clients: reminderClients()}, messenger, email, cfg, sent, nil)
	svc.now = func() time.Time { return time.Date(2026, time.October, 25, 9, 0, 0, 0, time.UTC) }
	return svc, messenger, email, sent
}

func templatesByNumber(m *mocks.MessengerMock) map[string]mocks.SentTemplate {
	out := map[string]mocks.SentTemplate{}
	for _, t := range m.Templates {
		out[t.To] = t
	}
	return out
}

func TestReminderService_PaymentReminders(t *testing.T) {
	svc, messenger, email, sent := newReminderService(ReminderConfig{})

	report, err := svc.SendPaymentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &reminder.Report{Kind: reminder.KindPayment, Considered: 4, Sent: 2, Emailed: 1, Skipped: 1}, report)

	got := templatesByNumber(messenger)
	require.Len(t, got, 2)
	ann := got["+27820000001"]
	assert.Equal(t, "payment_reminder", ann.Name)
	assert.Equal(t, messaging.BodyText("Ann Lee", "-42.5", "01 November 2026"), ann.Components)
	assert.Contains(t, got, "+27820000006")

	require.Len(t, email.Sent, 1)
	assert.Equal(t, "bo@example.com", email.Sent[0].To)
	assert.Equal(t, "Bo Ng", email.Sent[0].Name)
	assert.Equal(t, "01 November 2026", email.Sent[0].DueDate)

	assert.Equal(t, 2.0, testutil.ToFloat64(sent.WithLabelValues("payment", ChannelWhatsApp, "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sent.WithLabelValues("payment", ChannelNone, "skipped")))
}

func TestReminderService_FinalRemindersQuoteAbsoluteOutstanding(t *testing.T) {
	svc, messenger, _, _ := newReminderService(ReminderConfig{FinalTemplate: "final_notice"})

	report, err := svc.SendFinalReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)

	ann := templatesByNumber(messenger)["+27820000001"]
	assert.Equal(t, "final_notice", ann.Name)
	assert.Equal(t, messaging.BodyText("Ann Lee", "42.5", "10 October 2026"), ann.Components)
}

func TestReminderService_FailuresDoNotAbortBatch(t *testing.T) {
	svc, messenger, _, sent := newReminderService(ReminderConfig{Concurrency: 1})
	messenger.FailFor = map[string]error{"+27820000001": errors.New("recipient not allowed")}

	report, err := svc.Send(context.Background(), reminder.KindPayment)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Sent)
	assert.Contains(t, templatesByNumber(messenger), "+27820000006")
	assert.Equal(t, 1.0, testutil.ToFloat64(sent.WithLabelValues("payment", ChannelWhatsApp, "failed")))
}

func TestReminderService_DevelopmentSendsOnlyToTestNumber(t *testing.T) {
	svc, messenger, email, _ := newReminderService(ReminderConfig{
		Development:       true,
		DevClientName:     "di",
		DevReceiverNumber: "+10000000000",
	})

	report, err := svc.SendPaymentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Considered)
	assert.Equal(t, 1, report.Sent)
	require.Len(t, messenger.Templates, 1)
	assert.Equal(t, "+10000000000", messenger.Templates[0].To)
	assert.Equal(t, "Di", messenger.Templates[0].Components[0].Parameters[0].Text)
	assert.Empty(t, email.Sent)
}

func TestReminderService_DevelopmentClientMissing(t *testing.T) {
	svc, messenger, _, _ := newReminderService(ReminderConfig{Development: true, DevClientName: "Nobody", DevReceiverNumber: "+1"})
	report, err := svc.SendPaymentReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Considered)
	assert.Empty(t, messenger.Templates)
}

func TestReminderService_Errors(t *testing.T) {
	svc := NewReminderService(&mocks.BillingClientMock{Err: errors.New("uisp down")}, &mocks.MessengerMock{}, nil, ReminderConfig{}, nil, nil)
	_, err := svc.SendPaymentReminders(context.Background())
	assert.ErrorContains(t, err, "uisp down")

	_, err = svc.Send(context.Background(), reminder.Kind("weekly"))
	assert.ErrorIs(t, err, ErrUnknownReminderKind)
}

func TestReminderService_NoEmailServiceSkipsEmailOnlyClients(t *testing.T) {
	svc := NewReminderService(&mocks.BillingClientMock{Clients: reminderClients()}, &mocks.MessengerMock{}, nil, ReminderConfig{MinOutstanding: 10}, nil, nil)
	report, err := svc.SendPaymentReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Skipped)
	assert.Zero(t, report.Emailed)
}
