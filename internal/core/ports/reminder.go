package ports

import (
	"context"

	"github.com/avatarctic/docflow/internal/core/domain/reminder"
)

// ReminderService sends payment reminders to clients with overdue balances.
type ReminderService interface {
	SendPaymentReminders(ctx context.Context) (*reminder.Report, error)
	SendFinalReminders(ctx context.Context) (*reminder.Report, error)
	Send(ctx context.Context, kind reminder.Kind) (*reminder.Report, error)
}
