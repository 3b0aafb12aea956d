// Package events defines the process-wide notifications emitted by the n8n
// client and the publishers that deliver them.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event names.
const (
	NameRequestSent      = "n8n.request.sent"
	NameResponseReceived = "n8n.response.received"
	NameRequestFailed    = "n8n.request.failed"
)

// Event is a named notification.
type Event interface {
	Name() string
}

// Publisher delivers events. Publishing is fire-and-forget: delivery
// problems are the publisher's concern and never reach the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event)

// Publish calls f(ctx, event).
func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	f(ctx, event)
}

// RequestSent is published before an n8n call is dispatched.
type RequestSent struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	Payload   map[string]any    `json:"payload"`
	Timestamp time.Time         `json:"timestamp"`
}

// Name implements Event.
func (RequestSent) Name() string { return NameRequestSent }

// ResponseReceived is published after a call completed with a success status.
type ResponseReceived struct {
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Response   map[string]any    `json:"response"`
	Duration   time.Duration     `json:"-"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Name implements Event.
func (ResponseReceived) Name() string { return NameResponseReceived }

// MarshalJSON renders Duration as fractional seconds under "duration_seconds".
func (e ResponseReceived) MarshalJSON() ([]byte, error) {
	type plain ResponseReceived

	//nolint:wrapcheck // Marshaling errors are returned to encoding/json as-is
	return json.Marshal(struct {
		plain
		DurationSeconds float64 `json:"duration_seconds"`
	}{plain: plain(e), DurationSeconds: e.Duration.Seconds()})
}

// RequestFailed is published when a call ends in a transport failure or an API error.
type RequestFailed struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	Payload   map[string]any    `json:"payload"`
	Err       error             `json:"-"`
	Timestamp time.Time         `json:"timestamp"`
}

// Name implements Event.
func (RequestFailed) Name() string { return NameRequestFailed }

// MarshalJSON renders Err as its message.
func (e RequestFailed) MarshalJSON() ([]byte, error) {
	type plain RequestFailed

	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}

	//nolint:wrapcheck // Marshaling errors are returned to encoding/json as-is
	return json.Marshal(struct {
		plain
		Error string `json:"error"`
	}{plain: plain(e), Error: msg})
}

// Multi publishes every event to each publisher in order.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, event Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}
