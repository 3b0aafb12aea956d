package observer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/lexfrei/go-n8n/observer"
)

type statusErr struct {
	status int
}

func (e *statusErr) Error() string   { return "api error" }
func (e *statusErr) HTTPStatus() int { return e.status }

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	data, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range data.DataPoints {
		total += dp.Value
	}

	return total
}

func TestOTelMetricsObserver(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	obs, err := observer.NewOTelMetricsObserver(provider.Meter("n8n-test"))
	require.NoError(t, err)

	ctx := context.Background()
	obs.OnRequestSent(ctx, observer.RequestEnvelope{Method: "GET"})
	obs.OnResponseReceived(ctx, observer.ResponseEnvelope{Method: "GET", StatusCode: 200, Duration: 250 * time.Millisecond})
	obs.OnRequestSent(ctx, observer.RequestEnvelope{Method: "POST"})
	obs.OnRequestFailed(ctx, observer.FailureEnvelope{Method: "POST", Err: &statusErr{status: 404}, Duration: time.Second})

	metrics := collect(t, reader)

	assert.Equal(t, int64(2), sumOf(t, metrics[observer.MetricRequestsSent]))
	assert.Equal(t, int64(1), sumOf(t, metrics[observer.MetricResponsesReceived]))
	assert.Equal(t, int64(1), sumOf(t, metrics[observer.MetricRequestsFailed]))

	hist, ok := metrics[observer.MetricRequestDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)

	var count uint64
	var sum float64
	for _, dp := range hist.DataPoints {
		count += dp.Count
		sum += dp.Sum
	}

	assert.Equal(t, uint64(2), count)
	assert.InDelta(t, 1.25, sum, 1e-9)

	failed, ok := metrics[observer.MetricRequestsFailed].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, failed.DataPoints, 1)

	status, found := failed.DataPoints[0].Attributes.Value(attribute.Key("http.response.status_code"))
	require.True(t, found)
	assert.Equal(t, int64(404), status.AsInt64())
}

func newTracer(t *testing.T) (trace.Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return provider.Tracer("n8n-test"), recorder
}

func TestTracingObserverSuccess(t *testing.T) {
	t.Parallel()

	tracer, recorder := newTracer(t)
	obs := observer.NewTracingObserver(tracer)
	ctx := context.Background()

	obs.OnRequestSent(ctx, observer.RequestEnvelope{ID: "req-1", Method: "GET", URL: "http://n8n/api/v1/workflows", Timestamp: time.Now()})
	assert.Equal(t, 1, obs.Pending())

	obs.OnResponseReceived(ctx, observer.ResponseEnvelope{ID: "req-1", Method: "GET", StatusCode: 200})

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	span := ended[0]
	assert.Equal(t, "n8n GET", span.Name())
	assert.Equal(t, trace.SpanKindClient, span.SpanKind())
	assert.Equal(t, codes.Ok, span.Status().Code)
	assert.Equal(t, 0, obs.Pending())
}

func TestTracingObserverFailure(t *testing.T) {
	t.Parallel()

	tracer, recorder := newTracer(t)
	obs := observer.NewTracingObserver(tracer)
	ctx := context.Background()

	obs.OnRequestSent(ctx, observer.RequestEnvelope{ID: "req-2", Method: "DELETE", Timestamp: time.Now()})
	obs.OnRequestFailed(ctx, observer.FailureEnvelope{ID: "req-2", Method: "DELETE", Err: &statusErr{status: 500}})

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	span := ended[0]
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "api error", span.Status().Description)
	assert.NotEmpty(t, span.Events(), "error should be recorded as a span event")
}

func TestTracingObserverUnknownID(t *testing.T) {
	t.Parallel()

	tracer, recorder := newTracer(t)
	obs := observer.NewTracingObserver(tracer)

	obs.OnResponseReceived(context.Background(), observer.ResponseEnvelope{ID: "missing"})
	obs.OnRequestFailed(context.Background(), observer.FailureEnvelope{ID: "missing"})

	assert.Empty(t, recorder.Ended())
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: assert.AnError, want: 0},
		{name: "status error", err: &statusErr{status: 422}, want: 422},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, observer.StatusCode(tt.err))
		})
	}
}
