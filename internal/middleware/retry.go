// Package middleware provides the RoundTripper layers of the n8n transport.
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-n8n/internal/retry"
	"github.com/lexfrei/go-n8n/observability"
)

// RetryConfig configures the retry middleware.
type RetryConfig struct {
	// MaxRetries is the number of attempts made after the first one.
	MaxRetries int
	// Wait is the constant delay between attempts.
	Wait    time.Duration
	Logger  observability.Logger
	Metrics observability.MetricsRecorder
}

// Retry returns a middleware that retries failed requests with a constant delay.
// It retries on:
// - Network errors (connection failures, resets), but not context cancellation.
// - 5xx server errors.
// - 429 rate limit errors (a Retry-After header overrides the delay).
//
// When the last attempt still yields a retryable status, that response is
// returned so the caller can classify it.
func Retry(cfg RetryConfig) func(http.RoundTripper) http.RoundTripper {
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetricsRecorder()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &retryTransport{
			next:       next,
			maxRetries: cfg.MaxRetries,
			wait:       cfg.Wait,
			logger:     cfg.Logger,
			metrics:    cfg.Metrics,
		}
	}
}

type retryTransport struct {
	next       http.RoundTripper
	maxRetries int
	wait       time.Duration
	logger     observability.Logger
	metrics    observability.MetricsRecorder
}

// statusError marks a retryable HTTP status inside the backoff loop.
type statusError struct {
	statusCode int
}

func (e *statusError) Error() string {
	return http.StatusText(e.statusCode)
}

// retryAfterBackOff lets a server-provided Retry-After replace the next delay.
type retryAfterBackOff struct {
	backoff.BackOff
	next time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	if b.next > 0 {
		d := b.next
		b.next = 0
		return d
	}

	return b.BackOff.NextBackOff()
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// Buffer the request body so every attempt can replay it
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read request body")
		}
	}

	policy := &retryAfterBackOff{BackOff: backoff.NewConstantBackOff(t.wait)}
	//nolint:gosec // maxRetries is clamped to be non-negative
	schedule := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(t.maxRetries)), ctx)

	attempt := 0
	var resp *http.Response

	operation := func() error {
		attempt++

		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		r, err := t.next.RoundTrip(req)
		if err != nil {
			if !retry.ShouldRetryError(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		if !retry.ShouldRetry(r.StatusCode) || attempt > t.maxRetries {
			resp = r
			return nil
		}

		if r.StatusCode == http.StatusTooManyRequests {
			policy.next = retry.ParseRetryAfter(r.Header.Get("Retry-After"), time.Now())
		}

		_, _ = io.Copy(io.Discard, r.Body)
		r.Body.Close()

		return &statusError{statusCode: r.StatusCode}
	}

	notify := func(err error, wait time.Duration) {
		t.logger.Warn("retrying n8n request",
			observability.Field{Key: "attempt", Value: attempt},
			observability.Field{Key: "max_retries", Value: t.maxRetries},
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "url", Value: req.URL.String()},
			observability.Field{Key: "reason", Value: err.Error()},
			observability.Field{Key: "wait", Value: wait},
		)

		t.metrics.RecordRetry(attempt, normalizePath(req.URL.Path))
	}

	if err := backoff.RetryNotify(operation, schedule, notify); err != nil {
		return nil, errors.Wrapf(err, "request failed after %d attempts", attempt)
	}

	return resp, nil
}
