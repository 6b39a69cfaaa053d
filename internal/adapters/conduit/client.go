// Package conduit provides a resilient client for a Phabricator-style
// Conduit API. Calls are form-encoded POSTs; the JSON envelope carries an
// API-level error_code distinct from transport failure
package conduit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "herald/internal/platform/errors"
	"herald/internal/platform/logger"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUA        = "herald-feed"
	defaultMaxRetry  = 4
	defaultRetryBase = 500 * time.Millisecond
)

// Options configures the Client
type Options struct {
	// BaseURL is the instance root, e.g. https://phab.example.org
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client is a minimal Conduit client, safe for concurrent use by the poll
// loop and the reply path
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("conduit"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// envelope is the standard Conduit response wrapper
type envelope struct {
	Result    json.RawMessage `json:"result"`
	ErrorCode *string         `json:"error_code"`
	ErrorInfo *string         `json:"error_info"`
}

// call invokes a Conduit method and decodes the result into out.
// A nil result with no error_code decodes out as untouched
func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api.token", c.opts.Token)
	body := params.Encode()
	endpoint := c.opts.BaseURL + "/api/" + method

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "conduit new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !c.shouldRetry(attempts) {
				return perr.Wrapf(err, perr.ErrorCodeTransport, "conduit %s failed", method)
			}
			back := c.backoff(attempts)
			c.log.Warn().Str("method", method).Dur("retry_in", back).Int("attempt", attempts).
				Msg("conduit transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("method", method).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("conduit http response")

		switch {
		case resp.StatusCode == http.StatusOK:
			return c.decode(method, resp.Body, out)
		case resp.StatusCode == http.StatusTooManyRequests:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return perr.Newf(perr.ErrorCodeTooManyRequests, "conduit %s rate limited", method)
			}
			back := c.backoff(attempts)
			c.log.Warn().Str("method", method).Dur("sleep", back).Msg("conduit rate limited backing off")
			c.sleep(back)
			attempts++
			continue
		case resp.StatusCode >= 500:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return perr.Transportf("conduit %s server error %d", method, resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Str("method", method).Int("status", resp.StatusCode).Dur("retry_in", back).
				Msg("conduit transient error retrying")
			c.sleep(back)
			attempts++
			continue
		default:
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return perr.Transportf("conduit %s unexpected status %d body %s", method, resp.StatusCode, string(tail))
		}
	}
}

func (c *Client) decode(method string, r io.ReadCloser, out any) error {
	defer func() { _ = r.Close() }()

	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeTransport, "conduit %s bad envelope", method)
	}
	if env.ErrorCode != nil && *env.ErrorCode != "" {
		info := ""
		if env.ErrorInfo != nil {
			info = *env.ErrorInfo
		}
		return perr.Transportf("conduit %s api error %s: %s", method, *env.ErrorCode, info)
	}
	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	// Empty containers arrive as [] even for map-shaped results
	if string(env.Result) == "[]" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeTransport, "conduit %s bad result", method)
	}
	return nil
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase / time.Millisecond)
	ms = ms << uint(attempt)
	ceiling := int64(30 * time.Second / time.Millisecond)
	if ms > ceiling {
		ms = ceiling
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func drainAndClose(r io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4096))
	return r.Close()
}
