package observer

import (
	"context"
	"net/url"

	"github.com/lexfrei/go-n8n/observability"
)

// RecorderObserver forwards completed calls to an observability.MetricsRecorder.
// Paths are recorded as sent, without identifier normalization.
type RecorderObserver struct {
	Base

	recorder observability.MetricsRecorder
}

// NewRecorderObserver returns an observer feeding rec. A nil recorder discards data.
func NewRecorderObserver(rec observability.MetricsRecorder) *RecorderObserver {
	if rec == nil {
		rec = observability.NoopMetricsRecorder()
	}

	return &RecorderObserver{recorder: rec}
}

// OnResponseReceived forwards the call to RecordHTTPRequest.
func (o *RecorderObserver) OnResponseReceived(_ context.Context, resp ResponseEnvelope) {
	o.recorder.RecordHTTPRequest(resp.Method, pathOf(resp.URL), resp.StatusCode, resp.Duration)
}

// OnRequestFailed records an APIError with its status, or a TransportError when no response arrived.
func (o *RecorderObserver) OnRequestFailed(_ context.Context, failure FailureEnvelope) {
	status := StatusCode(failure.Err)
	if status == 0 {
		o.recorder.RecordError("n8n.request", "TransportError")
		return
	}

	o.recorder.RecordHTTPRequest(failure.Method, pathOf(failure.URL), status, failure.Duration)
	o.recorder.RecordError("n8n.request", "APIError")
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	return u.Path
}
