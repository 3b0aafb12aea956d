package observability

import "time"

// MetricsRecorder is an interface for recording transport-level metrics.
// Implementations can use any metrics library (Prometheus, StatsD, OpenTelemetry, etc.).
type MetricsRecorder interface {
	// RecordHTTPRequest records a completed n8n API call with method, normalized
	// path, status code, and duration.
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)

	// RecordRetry records a retry attempt for an endpoint.
	RecordRetry(attempt int, endpoint string)

	// RecordRateLimit records time spent waiting on the client-side rate limiter.
	RecordRateLimit(endpoint string, wait time.Duration)

	// RecordError records an error occurrence by operation and error type.
	RecordError(operation, errorType string)
}

type noopMetricsRecorder struct{}

// NoopMetricsRecorder returns a metrics recorder that does nothing.
// This is the default recorder used when none is provided.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NoopMetricsRecorder() MetricsRecorder {
	return &noopMetricsRecorder{}
}

func (m *noopMetricsRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *noopMetricsRecorder) RecordRetry(int, string)                              {}
func (m *noopMetricsRecorder) RecordRateLimit(string, time.Duration)                {}
func (m *noopMetricsRecorder) RecordError(string, string)                           {}
