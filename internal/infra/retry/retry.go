package retry

// Retry with exponential backoff and full jitter, tuned for the GitHub REST API.
// Retries 429 and 5xx gateway errors, plus 403 when the response carries a
// rate limit signal (Retry-After, or X-RateLimit-Remaining: 0 with a reset time).
// A server-requested wait longer than MaxDelay is not waited out.

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// HTTPError is a non-2xx response. RetryAfter is the wait the server asked
// for, 0 when it did not say.
type HTTPError struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RetryAfter time.Duration
}

// NewHTTPError builds the error of a response with status code, header and body.
func NewHTTPError(statusCode int, header http.Header, body []byte) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
		RetryAfter: RateLimitDelay(header, time.Now()),
	}
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error: <nil>"
	}
	if len(e.Body) == 0 {
		return fmt.Sprintf("http error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("http error (%d): %s", e.StatusCode, string(e.Body))
}

// RateLimited reports whether the server asked the client to slow down.
func (e *HTTPError) RateLimited() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return e.RetryAfter > 0
	}
	return false
}

func IsRetryable(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	if he.RateLimited() {
		return true
	}
	switch he.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ParseRetryAfter accepts delta-seconds or an HTTP date.
func ParseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// RateLimitDelay is how long h asks the client to wait: Retry-After when set,
// otherwise the time until X-RateLimit-Reset once X-RateLimit-Remaining is 0.
func RateLimitDelay(h http.Header, now time.Time) time.Duration {
	if h == nil {
		return 0
	}
	if d := ParseRetryAfter(h.Get("Retry-After")); d > 0 {
		return d
	}
	if strings.TrimSpace(h.Get("X-RateLimit-Remaining")) != "0" {
		return 0
	}
	reset, err := strconv.ParseInt(strings.TrimSpace(h.Get("X-RateLimit-Reset")), 10, 64)
	if err != nil {
		return 0
	}
	if d := time.Unix(reset, 0).Sub(now); d > 0 {
		return d
	}
	return 0
}

func clamp(d, max time.Duration) time.Duration {
	if max > 0 && d > max {
		return max
	}
	return d
}

// FullJitter picks a delay in [0, min(maxDelay, baseDelay*2^attempt)].
func FullJitter(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if baseDelay <= 0 {
		return 0
	}
	ceiling := clamp(baseDelay<<attempt, maxDelay)
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(ceiling) + 1))
}

// Do runs fn until it succeeds, fails with a non-retryable error, runs out of
// attempts or ctx is done. A rate limit that resets after MaxDelay ends the
// loop with that error.
func Do(ctx context.Context, opts Options, fn func() error) error {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 300 * time.Millisecond
	}

	attempts := 1 + opts.MaxRetries
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == attempts-1 {
			return lastErr
		}

		sleep := FullJitter(attempt, opts.BaseDelay, opts.MaxDelay)
		var he *HTTPError
		if errors.As(lastErr, &he) && he.RetryAfter > 0 {
			if opts.MaxDelay > 0 && he.RetryAfter > opts.MaxDelay {
				return lastErr
			}
			sleep = he.RetryAfter
		}

		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return lastErr
}
