package ports

import (
	"context"

	"github.com/avatarctic/docflow/internal/core/domain/reminder"
)

// ReminderEmail carries the facts of a reminder sent by email instead of WhatsApp.
type ReminderEmail struct {
	To      string
	Name    string
	Kind    reminder.Kind
	Amount  string
	DueDate string
}

// EmailService defines the interface for outbound email
type EmailService interface {
	SendReminder(ctx context.Context, msg ReminderEmail) error
}
