package observer_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexfrei/go-n8n/observer"
)

type sentOnly struct {
	observer.Base

	calls int
}

func (s *sentOnly) OnRequestSent(context.Context, observer.RequestEnvelope) {
	s.calls++
}

type valueObserver struct {
	observer.Base

	tags map[string]string
}

func TestRegistryNotifiesInRegistrationOrder(t *testing.T) {
	t.Parallel()

	var order []string
	record := func(name string) *observer.Funcs {
		return &observer.Funcs{
			RequestSent: func(context.Context, observer.RequestEnvelope) {
				order = append(order, name+":sent")
			},
			ResponseReceived: func(context.Context, observer.ResponseEnvelope) {
				order = append(order, name+":received")
			},
		}
	}

	reg := observer.NewRegistry(record("first"), record("second"))
	ctx := context.Background()

	reg.NotifyRequestSent(ctx, observer.RequestEnvelope{ID: "1"})
	reg.NotifyResponseReceived(ctx, observer.ResponseEnvelope{ID: "1"})

	assert.Equal(t, []string{"first:sent", "second:sent", "first:received", "second:received"}, order)
}

func TestRegistrySkipsMissingHandlers(t *testing.T) {
	t.Parallel()

	listener := &sentOnly{}
	reg := observer.NewRegistry(listener, &observer.Funcs{})
	ctx := context.Background()

	assert.NotPanics(t, func() {
		reg.NotifyRequestSent(ctx, observer.RequestEnvelope{})
		reg.NotifyResponseReceived(ctx, observer.ResponseEnvelope{})
		reg.NotifyRequestFailed(ctx, observer.FailureEnvelope{Err: assert.AnError})
	})
	assert.Equal(t, 1, listener.calls)
}

func TestRegistryRemove(t *testing.T) {
	t.Parallel()

	t.Run("removes by identity", func(t *testing.T) {
		t.Parallel()

		a, b := &sentOnly{}, &sentOnly{}
		reg := observer.NewRegistry(a, b)

		reg.Remove(a)
		reg.NotifyRequestSent(context.Background(), observer.RequestEnvelope{})

		assert.Equal(t, 1, reg.Len())
		assert.Equal(t, 0, a.calls)
		assert.Equal(t, 1, b.calls)
	})

	t.Run("absent observer is a no-op", func(t *testing.T) {
		t.Parallel()

		reg := observer.NewRegistry(&sentOnly{})

		reg.Remove(&sentOnly{})
		reg.Remove(nil)

		assert.Equal(t, 1, reg.Len())
	})

	t.Run("non-comparable values never match", func(t *testing.T) {
		t.Parallel()

		obs := valueObserver{tags: map[string]string{"team": "ops"}}
		reg := observer.NewRegistry(obs)

		assert.NotPanics(t, func() { reg.Remove(obs) })
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("observer may remove itself while notified", func(t *testing.T) {
		t.Parallel()

		reg := observer.NewRegistry()
		calls := 0

		var self *observer.Funcs
		self = &observer.Funcs{
			RequestSent: func(context.Context, observer.RequestEnvelope) {
				calls++
				reg.Remove(self)
			},
		}
		reg.Add(self)

		reg.NotifyRequestSent(context.Background(), observer.RequestEnvelope{})
		reg.NotifyRequestSent(context.Background(), observer.RequestEnvelope{})

		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, reg.Len())
	})
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := observer.NewRegistry()
	metrics := observer.NewMetricsObserver()
	reg.Add(metrics)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			o := &sentOnly{}
			reg.Add(o)
			reg.Remove(o)
		}()

		go func() {
			defer wg.Done()

			reg.NotifyRequestSent(context.Background(), observer.RequestEnvelope{})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, int64(20), metrics.Metrics().RequestsSent)
}
