package observer

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrument names exported by OTelMetricsObserver.
const (
	MetricRequestsSent      = "n8n.client.requests.sent"
	MetricResponsesReceived = "n8n.client.responses.received"
	MetricRequestsFailed    = "n8n.client.requests.failed"
	MetricRequestDuration   = "n8n.client.request.duration"
)

// OTelMetricsObserver records request counts and durations as OpenTelemetry instruments.
type OTelMetricsObserver struct {
	sent     metric.Int64Counter
	received metric.Int64Counter
	failed   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewOTelMetricsObserver creates the instruments on meter.
func NewOTelMetricsObserver(meter metric.Meter) (*OTelMetricsObserver, error) {
	sent, err := meter.Int64Counter(MetricRequestsSent,
		metric.WithDescription("Requests dispatched to the n8n API"),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s counter", MetricRequestsSent)
	}

	received, err := meter.Int64Counter(MetricResponsesReceived,
		metric.WithDescription("Successful responses from the n8n API"),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s counter", MetricResponsesReceived)
	}

	failed, err := meter.Int64Counter(MetricRequestsFailed,
		metric.WithDescription("n8n API calls that ended in an error"),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s counter", MetricRequestsFailed)
	}

	duration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of n8n API calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s histogram", MetricRequestDuration)
	}

	return &OTelMetricsObserver{
		sent:     sent,
		received: received,
		failed:   failed,
		duration: duration,
	}, nil
}

// OnRequestSent increments the request counter.
func (o *OTelMetricsObserver) OnRequestSent(ctx context.Context, req RequestEnvelope) {
	o.sent.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.request.method", req.Method),
	))
}

// OnResponseReceived records the response count and latency histogram, keyed by method and status.
func (o *OTelMetricsObserver) OnResponseReceived(ctx context.Context, resp ResponseEnvelope) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", resp.Method),
		attribute.Int("http.response.status_code", resp.StatusCode),
	)

	o.received.Add(ctx, 1, attrs)
	o.duration.Record(ctx, resp.DurationSeconds(), attrs)
}

// OnRequestFailed counts the failure and records its latency.
func (o *OTelMetricsObserver) OnRequestFailed(ctx context.Context, failure FailureEnvelope) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", failure.Method),
		attribute.Int("http.response.status_code", StatusCode(failure.Err)),
	)

	o.failed.Add(ctx, 1, attrs)
	o.duration.Record(ctx, failure.Duration.Seconds(), attrs)
}

// TracingObserver opens a client span when a request is sent and ends it
// when the matching response or failure arrives.
type TracingObserver struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewTracingObserver returns an observer creating spans with tracer.
func NewTracingObserver(tracer trace.Tracer) *TracingObserver {
	return &TracingObserver{
		tracer: tracer,
		spans:  make(map[string]trace.Span),
	}
}

// OnRequestSent starts a client span and keeps it until the call settles.
func (o *TracingObserver) OnRequestSent(ctx context.Context, req RequestEnvelope) {
	_, span := o.tracer.Start(ctx, "n8n "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(req.Timestamp),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL),
			attribute.String("n8n.request.id", req.ID),
		),
	)

	o.mu.Lock()
	o.spans[req.ID] = span
	o.mu.Unlock()
}

// OnResponseReceived ends the span opened for the request.
func (o *TracingObserver) OnResponseReceived(_ context.Context, resp ResponseEnvelope) {
	span, ok := o.take(resp.ID)
	if !ok {
		return
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	span.SetStatus(codes.Ok, "")
	span.End()
}

// OnRequestFailed records the error on the span and ends it.
func (o *TracingObserver) OnRequestFailed(_ context.Context, failure FailureEnvelope) {
	span, ok := o.take(failure.ID)
	if !ok {
		return
	}

	if status := StatusCode(failure.Err); status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}

	msg := "request failed"
	if failure.Err != nil {
		span.RecordError(failure.Err)
		msg = failure.Err.Error()
	}

	span.SetStatus(codes.Error, msg)
	span.End()
}

// Pending returns the number of spans still waiting for a completion.
func (o *TracingObserver) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.spans)
}

func (o *TracingObserver) take(id string) (trace.Span, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	span, ok := o.spans[id]
	if ok {
		delete(o.spans, id)
	}

	return span, ok
}
