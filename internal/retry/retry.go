// Package retry classifies n8n API outcomes for the transport retry policy.
package retry

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ShouldRetry reports whether the HTTP status code indicates a transient failure.
// Retryable statuses are 429 (Too Many Requests) and every 5xx.
func ShouldRetry(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError || statusCode == http.StatusTooManyRequests
}

// ShouldRetryError reports whether a transport error may succeed on a later
// attempt. Cancellation and deadline errors are final.
func ShouldRetryError(err error) bool {
	if err == nil {
		return false
	}

	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// ParseRetryAfter parses the Retry-After HTTP header relative to now.
// The header can contain either a number of seconds or an HTTP-date.
//
// Returns 0 if the header is empty, unparseable, or in the past.
func ParseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(header); err == nil {
		if wait := at.Sub(now); wait > 0 {
			return wait
		}
	}

	return 0
}
