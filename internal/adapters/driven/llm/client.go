package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retry defaults for provider calls.
const (
	DefaultRetries = 2
	DefaultBackoff = 500 * time.Millisecond
)

// StatusError is a non-2xx reply from a provider API.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Code, e.Body)
}

// Temporary reports whether the request may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client sends JSON requests to one provider.
// Temporary failures are retried with exponential backoff.
type Client struct {
	// Provider names the API in error messages.
	Provider string

	// HTTP is the underlying client. http.DefaultClient when nil.
	HTTP *http.Client

	// Limiter throttles requests. Unlimited when nil.
	Limiter *RateLimiter

	// Retries is the number of extra attempts after a temporary failure.
	Retries uint64

	// Backoff is the first retry delay; later ones double.
	Backoff time.Duration

	// Header adds provider headers such as authentication.
	Header func(h http.Header)
}

// PostJSON sends in as a JSON body and decodes the reply into out.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.send(ctx, http.MethodPost, url, body, out)
	})
}

// GetJSON fetches url and decodes the reply into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.send(ctx, http.MethodGet, url, nil, out)
	})
}

// Probe issues a single GET and discards the body. It never retries.
func (c *Client) Probe(ctx context.Context, url string) error {
	return c.do(ctx, 0, func(ctx context.Context) error {
		return c.send(ctx, http.MethodGet, url, nil, nil)
	})
}

func (c *Client) withRetry(ctx context.Context, fn retry.RetryFunc) error {
	return c.do(ctx, c.Retries, fn)
}

func (c *Client) do(ctx context.Context, retries uint64, fn retry.RetryFunc) error {
	backoff := c.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return retry.Do(ctx, retry.WithMaxRetries(retries, retry.NewExponential(backoff)), fn)
}

// send performs one request. Temporary failures are marked retryable.
func (c *Client) send(ctx context.Context, method, url string, body []byte, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Header != nil {
		c.Header(req.Header)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return retry.RetryableError(fmt.Errorf("%s: send request: %w", c.Provider, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.Provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Provider: c.Provider, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		if resp.StatusCode == http.StatusTooManyRequests && c.Limiter != nil {
			c.Limiter.RecordRateLimitError(retryAfter(resp.Header))
		}
		if se.Temporary() {
			return retry.RetryableError(se)
		}
		return se
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.Provider, err)
	}
	return nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
