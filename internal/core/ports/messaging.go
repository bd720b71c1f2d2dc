package ports

import (
	"context"

	"github.com/avatarctic/docflow/internal/core/domain/messaging"
)

// Messenger sends WhatsApp messages.
type Messenger interface {
	SendTemplate(ctx context.Context, to, name string, components []messaging.TemplateComponent) error
	SendText(ctx context.Context, to, body string) error
	MarkRead(ctx context.Context, messageID string) error
}

// WebhookService handles inbound WhatsApp notifications.
type WebhookService interface {
	// Verify answers the subscription handshake. ok is false when the token does not match.
	Verify(mode, token, challenge string) (reply string, ok bool)
	// Handle dispatches every message in n and returns the status to report.
	Handle(ctx context.Context, n *messaging.WebhookNotification) string
}
