package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/docflow/internal/core/domain/messaging"
	"github.com/avatarctic/docflow/test/mocks"
)

const inboundPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "WABA",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "15550001111", "phone_number_id": "123"},
        "contacts": [{"wa_id": "27820000001", "profile": {"name": "Ann"}}],
        "messages": [
          {"id": "wamid.1", "from": "27820000001", "timestamp": "1760000000", "type": "text", "text": {"body": "hi"}},
          {"id": "wamid.2", "from": "27820000002", "type": "interactive",
           "interactive": {"type": "button_reply", "button_reply": {"id": "sales", "title": "Sales"}}},
          {"id": "wamid.3", "from": "27820000003", "type": "interactive",
           "interactive": {"type": "nfm_reply", "nfm_reply": {"name": "flow", "body": "Sent", "response_json": "{\"a\":1}"}}},
          {"id": "wamid.4", "from": "27820000004", "type": "image"}
        ]
      }
    }]
  }]
}`

func decodeNotification(t *testing.T, raw string) *messaging.WebhookNotification {
	t.Helper()
	var n messaging.WebhookNotification
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	return &n
}

func TestWebhookService_Verify(t *testing.T) {
	svc := NewWebhookService(&mocks.MessengerMock{}, "s3cret", "", nil)

	reply, ok := svc.Verify("subscribe", "s3cret", "1158201444")
	assert.True(t, ok)
	assert.Equal(t, "1158201444", reply)

	_, ok = svc.Verify("subscribe", "wrong", "x")
	assert.False(t, ok)
	_, ok = svc.Verify("unsubscribe", "s3cret", "x")
	assert.False(t, ok)

	_, ok = NewWebhookService(&mocks.MessengerMock{}, "", "", nil).Verify("subscribe", "", "x")
	assert.False(t, ok)
}

func TestWebhookService_HandleDispatchesByType(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	messenger := &mocks.MessengerMock{}
	svc := NewWebhookService(messenger, "tok", "Thanks, we will be in touch.", logger)

	status := svc.Handle(context.Background(), decodeNotification(t, inboundPayload))
	assert.Equal(t, messaging.WebhookStatusOK, status)

	assert.Equal(t, map[string][]string{"27820000001": {"Thanks, we will be in touch."}}, messenger.Texts)
	assert.Equal(t, []string{"wamid.1"}, messenger.Read)

	var replies []string
	var unhandled int
	for _, e := range hook.AllEntries() {
		if r, ok := e.Data["reply"]; ok {
			replies = append(replies, r.(string))
		}
		if e.Message == "unhandled message type received" {
			unhandled++
		}
	}
	assert.Equal(t, []string{"button_reply", "nfm_reply"}, replies)
	assert.Equal(t, 1, unhandled)
}

func TestWebhookService_HandleEmptyAndFailures(t *testing.T) {
	svc := NewWebhookService(&mocks.MessengerMock{}, "tok", "hello", nil)
	assert.Equal(t, messaging.WebhookStatusIgnored, svc.Handle(context.Background(), &messaging.WebhookNotification{}))
	assert.Equal(t, messaging.WebhookStatusIgnored, svc.Handle(context.Background(), nil))

	failing := &mocks.MessengerMock{FailFor: map[string]error{"27820000001": errors.New("window closed")}}
	svc = NewWebhookService(failing, "tok", "hello", nil)
	assert.Equal(t, messaging.WebhookStatusError, svc.Handle(context.Background(), decodeNotification(t, inboundPayload)))
}
