// Package messaging holds WhatsApp Cloud API payload types, both the template
// components we send and the webhook notifications we receive.
package messaging

import "encoding/json"

// TemplateParameter is one substitution value inside a template component.
type TemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TemplateComponent groups parameters for one section (header, body, button) of a template.
type TemplateComponent struct {
	Type       string              `json:"type"`
	SubType    string              `json:"sub_type,omitempty"`
	Index      string              `json:"index,omitempty"`
	Parameters []TemplateParameter `json:"parameters"`
}

// BodyText builds a single body component with plain text parameters.
func BodyText(values ...string) []TemplateComponent {
	params := make([]TemplateParameter, 0, len(values))
	for _, v := range values {
		params = append(params, TemplateParameter{Type: "text", Text: v})
	}
	return []TemplateComponent{{Type: "body", Parameters: params}}
}

// WebhookNotification is the envelope Meta posts to the webhook.
type WebhookNotification struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         Metadata         `json:"metadata"`
	Contacts         []WebhookContact `json:"contacts,omitempty"`
	Messages         []Message        `json:"messages,omitempty"`
	Statuses         []Status         `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// Message is an inbound message. Only the payload matching Type is populated.
type Message struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *TextBody    `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

type TextBody struct {
	Body string `json:"body"`
}

// Interactive is the reply to a button, list or flow message.
type Interactive struct {
	Type        string       `json:"type"`
	ButtonReply *ReplyChoice `json:"button_reply,omitempty"`
	ListReply   *ReplyChoice `json:"list_reply,omitempty"`
	NfmReply    *NfmReply    `json:"nfm_reply,omitempty"`
}

type ReplyChoice struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type NfmReply struct {
	Name         string          `json:"name"`
	Body         string          `json:"body"`
	ResponseJSON json.RawMessage `json:"response_json"`
}

// Message types the webhook dispatches on.
const (
	TypeText        = "text"
	TypeInteractive = "interactive"
)

// Webhook status values reported back to Meta.
const (
	WebhookStatusOK      = "ok"
	WebhookStatusIgnored = "ignored"
	WebhookStatusError   = "error"
)
