// Package uisp reads customer accounts from the UISP CRM API.
package uisp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/docflow/configs"
	"github.com/avatarctic/docflow/internal/core/domain/billing"
	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/avatarctic/docflow/internal/infrastructure/restclient"
)

var ErrBillingNotConfigured = errors.New("uisp: API base URL or key is not configured")

// Client implements ports.BillingClient.
type Client struct {
	baseURL string
	apiKey  string
	rest    *restclient.Client
	logger  *logrus.Logger
}

var _ ports.BillingClient = (*Client)(nil)

func NewClient(cfg *config.UISPConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		rest: &restclient.Client{
			HTTP:   &http.Client{Timeout: cfg.Timeout},
			Policy: restclient.DefaultRetryPolicy,
			Logger: logger,
		},
		logger: logger,
	}
}

// WithRetryPolicy overrides the retry policy, mostly for tests.
func (c *Client) WithRetryPolicy(p restclient.RetryPolicy) *Client {
	c.rest.Policy = p
	return c
}

func (c *Client) FetchClients(ctx context.Context, filter *billing.ClientFilter) ([]billing.Client, error) {
	if c.baseURL == "" || c.apiKey == "" {
		if c.logger != nil {
			c.logger.Error("UISP API base URL or API key is not set")
		}
		return nil, ErrBillingNotConfigured
	}

	var clients []billing.Client
	err := c.rest.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/clients", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-auth-token", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &clients)
	if err != nil {
		return nil, fmt.Errorf("fetch clients from UISP: %w", err)
	}

	out := filter.Apply(clients)
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"fetched": len(clients), "matched": len(out)}).Info("fetched UISP clients")
	}
	return out, nil
}
