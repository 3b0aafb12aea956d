package events

import (
	"context"
	"slices"
	"sync"
)

// Handler receives published events.
type Handler func(ctx context.Context, event Event)

type subscription struct {
	// name is empty for handlers that receive every event.
	name    string
	handler Handler
}

// Bus is an in-process Publisher. Handlers run synchronously on the
// publishing goroutine in subscription order.
type Bus struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for events with the given name.
func (b *Bus) Subscribe(name string, h Handler) {
	if h == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = append(b.subs, subscription{name: name, handler: h})
}

// SubscribeAll registers h for every event.
func (b *Bus) SubscribeAll(h Handler) {
	b.Subscribe("", h)
}

// Publish implements Publisher.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	name := event.Name()
	for _, s := range subs {
		if s.name == "" || s.name == name {
			s.handler(ctx, event)
		}
	}
}
