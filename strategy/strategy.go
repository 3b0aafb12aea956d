// Package strategy decides when and where an operation runs: inline (sync),
// on a background worker pool (async), or on a durable queue (queued).
//
// One strategy is chosen per process, usually from configuration via New.
package strategy

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-n8n/observability"
)

// Strategy names accepted by New.
const (
	NameSync   = "sync"
	NameAsync  = "async"
	NameQueued = "queued"
)

// Result messages.
const (
	AsyncMessage  = "Operation executed asynchronously"
	QueuedMessage = "Operation queued for execution"
)

var (
	// ErrNotSerializable is returned when a closure is handed to a strategy
	// that must serialize its operations.
	ErrNotSerializable = errors.New("operation is not serializable")
	// ErrUnknownOperation is returned when a named operation has no handler.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrShutdown is returned by an async strategy after Shutdown.
	ErrShutdown = errors.New("strategy is shut down")
)

// Strategy runs operations.
type Strategy interface {
	Execute(ctx context.Context, op Operation) (any, error)
	Name() string
}

type options struct {
	registry     *Registry
	workers      int
	syncFallback bool
	enqueuer     Enqueuer
	queue        string
	logger       observability.Logger
}

// Option configures a strategy.
type Option func(*options)

// WithRegistry sets the registry used to resolve named operations.
func WithRegistry(reg *Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithWorkers sets the async pool size.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithSyncFallback makes the async strategy run operations inline while
// keeping the async result shape.
func WithSyncFallback() Option {
	return func(o *options) { o.syncFallback = true }
}

// WithEnqueuer sets the queue the queued strategy submits jobs to.
func WithEnqueuer(e Enqueuer) Option {
	return func(o *options) { o.enqueuer = e }
}

// WithQueueName sets the queue name recorded on jobs.
func WithQueueName(name string) Option {
	return func(o *options) { o.queue = name }
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{
		workers: DefaultWorkers,
		queue:   DefaultQueue,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = DefaultWorkers
	}
	if o.queue == "" {
		o.queue = DefaultQueue
	}
	if o.logger == nil {
		o.logger = observability.NoopLogger()
	}

	return o
}

// New returns the strategy with the given name. Names are case-insensitive;
// unknown names select the sync strategy.
//
//nolint:ireturn // Factory selects the implementation by name
func New(name string, opts ...Option) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameAsync:
		return NewAsync(opts...), nil
	case NameQueued:
		return NewQueued(opts...)
	default:
		return NewSync(opts...), nil
	}
}
