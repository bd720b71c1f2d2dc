// Package whatsapp sends messages through the WhatsApp Cloud (Graph) API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/docflow/configs"
	"github.com/avatarctic/docflow/internal/core/domain/messaging"
	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/avatarctic/docflow/internal/infrastructure/restclient"
)

const (
	productWhatsApp     = "whatsapp"
	recipientIndividual = "individual"
	templateLanguage    = "en"
)

var ErrNotConfigured = errors.New("whatsapp: phone number id or system token is not configured")

// APIError is the error object the Graph API returns.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Details string `json:"-"`
	TraceID string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	msg := "whatsapp: " + e.Message
	if e.Details != "" {
		msg += ", " + e.Details
	}
	if e.TraceID != "" {
		msg += " (trace " + e.TraceID + ")"
	}
	return msg
}

// decodeAPIError extracts the Graph API error envelope, if present.
func decodeAPIError(_ int, body []byte) error {
	var env struct {
		Error *struct {
			APIError
			ErrorData struct {
				Details string `json:"details"`
			} `json:"error_data"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil || env.Error.Message == "" {
		return nil
	}
	apiErr := env.Error.APIError
	apiErr.Details = env.Error.ErrorData.Details
	return &apiErr
}

// Client implements ports.Messenger.
type Client struct {
	endpoint string
	token    string
	rest     *restclient.Client
	logger   *logrus.Logger
}

var _ ports.Messenger = (*Client)(nil)

func NewClient(cfg *config.WhatsAppConfig, logger *logrus.Logger) *Client {
	c := &Client{
		token: cfg.SystemToken,
		rest: &restclient.Client{
			HTTP:        &http.Client{Timeout: cfg.Timeout},
			Policy:      restclient.DefaultRetryPolicy,
			Logger:      logger,
			DecodeError: decodeAPIError,
		},
		logger: logger,
	}
	if cfg.PhoneNumberID != "" {
		c.endpoint = fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(cfg.BaseURL, "/"), cfg.APIVersion, cfg.PhoneNumberID)
	}
	return c
}

// WithRetryPolicy overrides the retry policy, mostly for tests.
func (c *Client) WithRetryPolicy(p restclient.RetryPolicy) *Client {
	c.rest.Policy = p
	return c
}

type templateLanguageBody struct {
	Code string `json:"code"`
}

type templateBody struct {
	Name       string                        `json:"name"`
	Language   templateLanguageBody          `json:"language"`
	Components []messaging.TemplateComponent `json:"components,omitempty"`
}

type textBody struct {
	Body string `json:"body"`
}

type outbound struct {
	MessagingProduct string        `json:"messaging_product"`
	RecipientType    string        `json:"recipient_type,omitempty"`
	To               string        `json:"to,omitempty"`
	Type             string        `json:"type,omitempty"`
	Template         *templateBody `json:"template,omitempty"`
	Text             *textBody     `json:"text,omitempty"`
	MessageID        string        `json:"message_id,omitempty"`
	Status           string        `json:"status,omitempty"`
}

func (c *Client) SendTemplate(ctx context.Context, to, name string, components []messaging.TemplateComponent) error {
	err := c.post(ctx, outbound{
		MessagingProduct: productWhatsApp,
		RecipientType:    recipientIndividual,
		To:               to,
		Type:             "template",
		Template:         &templateBody{Name: name, Language: templateLanguageBody{Code: templateLanguage}, Components: components},
	})
	if err != nil {
		return fmt.Errorf("send template %s: %w", name, err)
	}
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"template": name, "to": to}).Info("whatsapp template sent")
	}
	return nil
}

func (c *Client) SendText(ctx context.Context, to, body string) error {
	err := c.post(ctx, outbound{
		MessagingProduct: productWhatsApp,
		RecipientType:    recipientIndividual,
		To:               to,
		Type:             "text",
		Text:             &textBody{Body: body},
	})
	if err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	return nil
}

func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	if err := c.post(ctx, outbound{MessagingProduct: productWhatsApp, MessageID: messageID, Status: "read"}); err != nil {
		return fmt.Errorf("mark read %s: %w", messageID, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, msg outbound) error {
	if c.endpoint == "" || c.token == "" {
		return ErrNotConfigured
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.rest.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)
		return req, nil
	}, nil)
}
