package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "herald/internal/platform/errors"
	"herald/internal/platform/logger"
)

const (
	webhookTimeout   = 10 * time.Second
	webhookRetries   = 3
	webhookRetryBase = 250 * time.Millisecond
)

// WebhookOptions configures a WebhookNotifier
type WebhookOptions struct {
	URL       string
	Timeout   time.Duration
	Retries   int
	RetryBase time.Duration
}

// WebhookNotifier POSTs each line as a small JSON document to an incoming
// webhook. One request per line keeps ordering trivially correct
type WebhookNotifier struct {
	http  *http.Client
	opts  WebhookOptions
	log   logger.Logger
	sleep func(time.Duration)
}

// NewWebhook creates a WebhookNotifier
func NewWebhook(o WebhookOptions) *WebhookNotifier {
	if o.Timeout <= 0 {
		o.Timeout = webhookTimeout
	}
	if o.Retries <= 0 {
		o.Retries = webhookRetries
	}
	if o.RetryBase <= 0 {
		o.RetryBase = webhookRetryBase
	}
	return &WebhookNotifier{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("chat"),
		sleep: time.Sleep,
	}
}

type webhookPayload struct {
	Text string `json:"text"`
}

// Notify implements Notifier
func (n *WebhookNotifier) Notify(ctx context.Context, line string) error {
	body, err := json.Marshal(webhookPayload{Text: line})
	if err != nil {
		return perr.JSONErrf("webhook payload encode failed: %v", err)
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.URL, bytes.NewReader(body))
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "webhook new request failed")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.http.Do(req)
		if err == nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
			_ = resp.Body.Close()
			switch {
			case resp.StatusCode < 300:
				return nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				err = perr.Transportf("webhook status %d", resp.StatusCode)
			default:
				return perr.Transportf("webhook rejected with status %d", resp.StatusCode)
			}
		}
		if attempt >= n.opts.Retries {
			return perr.Wrapf(err, perr.ErrorCodeTransport, "webhook delivery failed")
		}
		back := n.opts.RetryBase << uint(attempt)
		n.log.Warn().Err(err).Dur("retry_in", back).Msg("webhook delivery retrying")
		n.sleep(back)
	}
}
