package observer

import (
	"context"
	"sync"
)

// Metrics is a snapshot of MetricsObserver counters.
// Durations are in seconds.
type Metrics struct {
	RequestsSent      int64   `json:"requests_sent"`
	ResponsesReceived int64   `json:"responses_received"`
	RequestsFailed    int64   `json:"requests_failed"`
	TotalDuration     float64 `json:"total_duration"`
	AverageDuration   float64 `json:"average_duration"`
}

// MetricsObserver counts requests and tracks the mean response time.
// AverageDuration always equals TotalDuration / ResponsesReceived, or zero
// before the first response.
type MetricsObserver struct {
	mu      sync.Mutex
	metrics Metrics
}

// NewMetricsObserver returns a MetricsObserver with all counters at zero.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnRequestSent counts the request.
func (m *MetricsObserver) OnRequestSent(context.Context, RequestEnvelope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.RequestsSent++
}

// OnResponseReceived counts the response and accumulates its duration.
func (m *MetricsObserver) OnResponseReceived(_ context.Context, resp ResponseEnvelope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.ResponsesReceived++
	m.metrics.TotalDuration += resp.DurationSeconds()
	m.metrics.AverageDuration = m.metrics.TotalDuration / float64(m.metrics.ResponsesReceived)
}

// OnRequestFailed counts a failure.
func (m *MetricsObserver) OnRequestFailed(context.Context, FailureEnvelope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.RequestsFailed++
}

// Metrics returns a copy of the current counters.
func (m *MetricsObserver) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.metrics
}

// Map returns the current counters keyed by their snake_case names.
func (m *MetricsObserver) Map() map[string]any {
	s := m.Metrics()

	return map[string]any{
		"requests_sent":      s.RequestsSent,
		"responses_received": s.ResponsesReceived,
		"requests_failed":    s.RequestsFailed,
		"total_duration":     s.TotalDuration,
		"average_duration":   s.AverageDuration,
	}
}

// Reset zeroes every counter.
func (m *MetricsObserver) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics = Metrics{}
}
