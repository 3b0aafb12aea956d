package observer

import "time"

// RequestEnvelope describes an n8n call about to be dispatched.
type RequestEnvelope struct {
	// ID correlates the sent, received and failed notifications of one call.
	ID        string
	Method    string
	URL       string
	Headers   map[string]string
	Payload   map[string]any
	Timestamp time.Time
}

// ResponseEnvelope describes a call that completed with a success status.
type ResponseEnvelope struct {
	ID         string
	Method     string
	URL        string
	StatusCode int
	Headers    map[string]string
	// Body is the decoded response; empty when the body was empty or not JSON.
	Body      map[string]any
	Duration  time.Duration
	Timestamp time.Time
}

// DurationSeconds returns the elapsed time of the call in seconds.
func (e ResponseEnvelope) DurationSeconds() float64 {
	return e.Duration.Seconds()
}

// FailureEnvelope describes a call that ended in a transport failure or an API error.
type FailureEnvelope struct {
	ID        string
	Method    string
	URL       string
	Headers   map[string]string
	Payload   map[string]any
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}
