package github

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haya14busa/github-release-stats/internal/infra/log"
	"github.com/haya14busa/github-release-stats/internal/infra/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// transport sends each request through the rate limiter and the circuit
// breaker, retrying transient and rate limited failures. Bodies are read
// into memory, capped at maxResponseSize.
type transport struct {
	base            http.RoundTripper
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	retry           retry.Options
	maxResponseSize int64
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	requestID := log.GenerateRequestID()
	endpoint := req.URL.RequestURI()
	startTime := time.Now()

	var resp *http.Response
	err := retry.Do(ctx, t.retry, func() error {
		if err := t.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
		r, err := t.circuitBreaker.Execute(func() (interface{}, error) {
			return t.send(req, requestID, endpoint)
		})
		if err != nil {
			return err
		}
		resp = r.(*http.Response)
		return nil
	})

	var he *retry.HTTPError
	switch {
	case errors.As(err, &he):
		// the final status goes back to go-github, which decodes the error body
		log.LogDebug("GitHub request failed", zap.String("request_id", requestID), zap.String("endpoint", endpoint), zap.Int("status_code", he.StatusCode))
		return errorResponse(req, he), nil
	case err != nil:
		log.LogDebug("GitHub request failed", zap.String("request_id", requestID), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	log.LogDebug("GitHub request done",
		zap.String("request_id", requestID),
		zap.String("endpoint", endpoint),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return resp, nil
}

func (t *transport) send(req *http.Request, requestID, endpoint string) (*http.Response, error) {
	startTime := time.Now()
	log.LogRequest(requestID, req.Method, endpoint, zap.String("url", req.URL.String()))

	resp, err := t.base.RoundTrip(req.Clone(req.Context()))
	if err != nil {
		log.LogResponse(requestID, 0, time.Since(startTime).Milliseconds(), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponseSize))
	if err != nil {
		log.LogResponse(requestID, resp.StatusCode, time.Since(startTime).Milliseconds(), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.LogResponse(requestID, resp.StatusCode, time.Since(startTime).Milliseconds(), zap.String("endpoint", endpoint))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, retry.NewHTTPError(resp.StatusCode, resp.Header, body)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

func errorResponse(req *http.Request, he *retry.HTTPError) *http.Response {
	header := he.Header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", he.StatusCode, http.StatusText(he.StatusCode)),
		StatusCode:    he.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(he.Body)),
		ContentLength: int64(len(he.Body)),
		Request:       req,
	}
}
