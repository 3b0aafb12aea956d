package observer

import (
	"context"

	"github.com/lexfrei/go-n8n/observability"
)

// LoggingObserver writes one log line per notification.
type LoggingObserver struct {
	logger observability.Logger
}

// NewLoggingObserver returns an observer logging to logger. A nil logger discards output.
func NewLoggingObserver(logger observability.Logger) *LoggingObserver {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return &LoggingObserver{logger: logger}
}

// OnRequestSent logs the outgoing method and URL at debug level.
func (o *LoggingObserver) OnRequestSent(_ context.Context, req RequestEnvelope) {
	o.logger.Debug("n8n request sent",
		observability.Field{Key: "request_id", Value: req.ID},
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "url", Value: req.URL},
		observability.Field{Key: "payload_size", Value: len(req.Payload)},
	)
}

// OnResponseReceived logs status and duration.
func (o *LoggingObserver) OnResponseReceived(_ context.Context, resp ResponseEnvelope) {
	o.logger.Info("n8n response received",
		observability.Field{Key: "request_id", Value: resp.ID},
		observability.Field{Key: "method", Value: resp.Method},
		observability.Field{Key: "url", Value: resp.URL},
		observability.Field{Key: "status_code", Value: resp.StatusCode},
		observability.Field{Key: "duration", Value: resp.Duration},
	)
}

// OnRequestFailed logs the failure at error level.
func (o *LoggingObserver) OnRequestFailed(_ context.Context, failure FailureEnvelope) {
	fields := []observability.Field{
		{Key: "request_id", Value: failure.ID},
		{Key: "method", Value: failure.Method},
		{Key: "url", Value: failure.URL},
		{Key: "duration", Value: failure.Duration},
	}
	if status := StatusCode(failure.Err); status > 0 {
		fields = append(fields, observability.Field{Key: "status_code", Value: status})
	}
	if failure.Err != nil {
		fields = append(fields, observability.Field{Key: "error", Value: failure.Err.Error()})
	}

	o.logger.Error("n8n request failed", fields...)
}
