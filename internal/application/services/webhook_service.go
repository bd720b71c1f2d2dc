package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/docflow/internal/core/domain/messaging"
	"github.com/avatarctic/docflow/internal/core/ports"
)

const subscribeMode = "subscribe"

// WebhookService answers the WhatsApp subscription handshake and dispatches
// inbound messages by type.
type WebhookService struct {
	messenger   ports.Messenger
	verifyToken string
	autoReply   string
	logger      *logrus.Logger
}

// NewWebhookService builds the dispatcher. An empty autoReply disables replies.
func NewWebhookService(messenger ports.Messenger, verifyToken, autoReply string, logger *logrus.Logger) *WebhookService {
	return &WebhookService{messenger: messenger, verifyToken: verifyToken, autoReply: autoReply, logger: logger}
}

func (s *WebhookService) Verify(mode, token, challenge string) (string, bool) {
	if s.verifyToken == "" {
		return "", false
	}
	if mode != subscribeMode || subtle.ConstantTimeCompare([]byte(token), []byte(s.verifyToken)) != 1 {
		s.entry().WithField("mode", mode).Warn("webhook verification failed")
		return "", false
	}
	return challenge, true
}

func (s *WebhookService) Handle(ctx context.Context, n *messaging.WebhookNotification) string {
	if n == nil || len(n.Entry) == 0 {
		s.entry().Warn("no entry in webhook payload")
		return messaging.WebhookStatusIgnored
	}
	status := messaging.WebhookStatusOK
	for _, entry := range n.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.dispatch(ctx, msg); err != nil {
					s.entry().WithError(err).WithField("message_id", msg.ID).Error("error handling webhook message")
					status = messaging.WebhookStatusError
				}
			}
		}
	}
	return status
}

func (s *WebhookService) dispatch(ctx context.Context, msg messaging.Message) error {
	log := s.entry().WithFields(logrus.Fields{"from": msg.From, "type": msg.Type})
	switch msg.Type {
	case messaging.TypeText:
		body := ""
		if msg.Text != nil {
			body = msg.Text.Body
		}
		log.WithField("body", body).Info("text message received")
		if msg.ID != "" {
			if err := s.messenger.MarkRead(ctx, msg.ID); err != nil {
				log.WithError(err).Warn("failed to send read receipt")
			}
		}
		if s.autoReply == "" {
			return nil
		}
		return s.messenger.SendText(ctx, msg.From, s.autoReply)
	case messaging.TypeInteractive:
		s.logInteractive(log, msg.Interactive)
	default:
		log.Info("unhandled message type received")
	}
	return nil
}

func (s *WebhookService) logInteractive(log *logrus.Entry, in *messaging.Interactive) {
	if in == nil {
		log.Info("interactive message without payload")
		return
	}
	var kind string
	var payload any
	switch {
	case in.ButtonReply != nil:
		kind, payload = "button_reply", in.ButtonReply
	case in.ListReply != nil:
		kind, payload = "list_reply", in.ListReply
	case in.NfmReply != nil:
		kind, payload = "nfm_reply", in.NfmReply
	default:
		kind, payload = in.Type, in
	}
	raw, _ := json.Marshal(payload)
	log.WithFields(logrus.Fields{"reply": kind, "payload": string(raw)}).Info("interactive reply received")
}

func (s *WebhookService) entry() *logrus.Entry {
	if s.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		return logrus.NewEntry(l)
	}
	return logrus.NewEntry(s.logger)
}
