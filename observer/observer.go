// Package observer provides request lifecycle listeners for the n8n client.
//
// Every call made by the client produces exactly one OnRequestSent followed by
// either OnResponseReceived or OnRequestFailed. Observers run synchronously on
// the calling goroutine in registration order.
package observer

import (
	"context"
	"reflect"
	"slices"
	"sync"
)

// Observer is notified about each n8n request.
type Observer interface {
	OnRequestSent(ctx context.Context, req RequestEnvelope)
	OnResponseReceived(ctx context.Context, resp ResponseEnvelope)
	OnRequestFailed(ctx context.Context, failure FailureEnvelope)
}

// Base implements Observer with no-op handlers.
// Embed it to handle only the notifications you care about.
type Base struct{}

func (Base) OnRequestSent(context.Context, RequestEnvelope)       {}
func (Base) OnResponseReceived(context.Context, ResponseEnvelope) {}
func (Base) OnRequestFailed(context.Context, FailureEnvelope)     {}

// Funcs adapts plain functions to Observer. Nil fields are skipped.
// Register it by pointer so Remove can find it again.
type Funcs struct {
	RequestSent      func(ctx context.Context, req RequestEnvelope)
	ResponseReceived func(ctx context.Context, resp ResponseEnvelope)
	RequestFailed    func(ctx context.Context, failure FailureEnvelope)
}

// OnRequestSent calls RequestSent if set.
func (f *Funcs) OnRequestSent(ctx context.Context, req RequestEnvelope) {
	if f.RequestSent != nil {
		f.RequestSent(ctx, req)
	}
}

// OnResponseReceived calls ResponseReceived if set.
func (f *Funcs) OnResponseReceived(ctx context.Context, resp ResponseEnvelope) {
	if f.ResponseReceived != nil {
		f.ResponseReceived(ctx, resp)
	}
}

// OnRequestFailed calls RequestFailed if set.
func (f *Funcs) OnRequestFailed(ctx context.Context, failure FailureEnvelope) {
	if f.RequestFailed != nil {
		f.RequestFailed(ctx, failure)
	}
}

// Registry is an ordered, concurrency-safe list of observers.
// Notifications iterate a snapshot, so observers may add or remove
// listeners while being notified.
type Registry struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewRegistry returns a registry holding the given observers.
func NewRegistry(observers ...Observer) *Registry {
	r := &Registry{}
	for _, o := range observers {
		r.Add(o)
	}

	return r
}

// Add appends an observer. Nil observers are ignored.
func (r *Registry) Add(o Observer) {
	if o == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = append(r.observers, o)
}

// Remove drops the first registered observer identical to o.
// Removing an observer that is not registered is a no-op.
func (r *Registry) Remove(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.observers {
		if same(existing, o) {
			r.observers = slices.Delete(r.observers, i, i+1)
			return
		}
	}
}

// Len returns the number of registered observers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.observers)
}

// NotifyRequestSent calls OnRequestSent on every observer.
func (r *Registry) NotifyRequestSent(ctx context.Context, req RequestEnvelope) {
	for _, o := range r.snapshot() {
		o.OnRequestSent(ctx, req)
	}
}

// NotifyResponseReceived calls OnResponseReceived on every observer.
func (r *Registry) NotifyResponseReceived(ctx context.Context, resp ResponseEnvelope) {
	for _, o := range r.snapshot() {
		o.OnResponseReceived(ctx, resp)
	}
}

// NotifyRequestFailed calls OnRequestFailed on every observer.
func (r *Registry) NotifyRequestFailed(ctx context.Context, failure FailureEnvelope) {
	for _, o := range r.snapshot() {
		o.OnRequestFailed(ctx, failure)
	}
}

func (r *Registry) snapshot() []Observer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.observers)
}

// same reports whether a and b are the same observer. Values of
// non-comparable types never match.
func same(a, b Observer) bool {
	if a == nil || b == nil {
		return false
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}

	return a == b
}
