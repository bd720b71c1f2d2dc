// Package restclient is the retrying JSON transport shared by the outbound API clients.
package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const maxErrorBody = 4 << 10

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, string(e.Body))
}

// Retryable reports whether a retry can change the outcome: transport
// failures, 5xx and 429 are retried, other statuses are final.
func Retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// RetryPolicy builds a fresh backoff for each call.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

// DefaultRetryPolicy retries three times starting at 200ms.
var DefaultRetryPolicy = RetryPolicy{InitialInterval: 200 * time.Millisecond, MaxInterval: 2 * time.Second, MaxRetries: 3}

func (p RetryPolicy) NewBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0
	var bf backoff.BackOff = eb
	if p.MaxRetries > 0 {
		bf = backoff.WithMaxRetries(eb, p.MaxRetries)
	}
	bf.Reset()
	return bf
}

// Client sends JSON requests and decodes JSON responses with retries.
type Client struct {
	HTTP   *http.Client
	Policy RetryPolicy
	Logger *logrus.Logger
	// DecodeError, when set, turns a failed response body into a richer error.
	// The returned error is wrapped together with the StatusError.
	DecodeError func(status int, body []byte) error
}

// Do executes the request built by newReq, retrying transient failures. When out
// is non-nil the response body is decoded into it.
func (c *Client) Do(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error), out any) error {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	bctx := backoff.WithContext(c.Policy.NewBackOff(), ctx)

	op := func() error {
		req, err := newReq(bctx.Context())
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			err := c.statusError(resp.StatusCode, body)
			if !Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		if c.Logger != nil {
			c.Logger.WithError(err).WithField("retry_in", wait.String()).Warn("request failed, retrying")
		}
	}
	return backoff.RetryNotify(op, bctx, notify)
}

func (c *Client) statusError(status int, body []byte) error {
	se := &StatusError{StatusCode: status, Body: body}
	if c.DecodeError == nil {
		return se
	}
	if detail := c.DecodeError(status, body); detail != nil {
		return &wrapped{detail: detail, status: se}
	}
	return se
}

type wrapped struct {
	detail error
	status *StatusError
}

func (w *wrapped) Error() string   { return w.detail.Error() }
func (w *wrapped) Unwrap() []error { return []error{w.detail, w.status} }
