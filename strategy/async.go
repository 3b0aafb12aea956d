package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-n8n/observability"
)

// DefaultWorkers is the async pool size when none is configured.
const DefaultWorkers = 4

// AsyncResult is returned by Async.Execute. Result holds a *Future, or the
// computed value when the strategy runs with WithSyncFallback.
type AsyncResult struct {
	Async     bool      `json:"async"`
	Message   string    `json:"message"`
	Result    any       `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// Future returns the pending handle when the operation was scheduled.
func (r AsyncResult) Future() (*Future, bool) {
	f, ok := r.Result.(*Future)
	return f, ok
}

// Future is the eventual outcome of a scheduled operation.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(value any, err error) {
	f.value, f.err = value, err
	close(f.done)
}

// Done is closed once the operation has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation finishes or ctx is done.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for async operation")
	}
}

type task struct {
	ctx    context.Context //nolint:containedctx // Detached context travels with the queued task
	op     Operation
	future *Future
}

// Async schedules operations on a bounded goroutine pool and returns without
// waiting for them.
type Async struct {
	registry     *Registry
	syncFallback bool
	logger       observability.Logger

	mu     sync.RWMutex
	closed bool
	tasks  chan task
	wg     sync.WaitGroup
}

// NewAsync starts an async strategy. Call Shutdown to stop its workers.
func NewAsync(opts ...Option) *Async {
	o := buildOptions(opts)

	a := &Async{
		registry:     o.registry,
		syncFallback: o.syncFallback,
		logger:       o.logger,
	}

	if a.syncFallback {
		return a
	}

	a.tasks = make(chan task, o.workers)
	for range o.workers {
		a.wg.Add(1)
		go a.work()
	}

	return a
}

// Execute schedules op and returns an AsyncResult holding its Future.
// It blocks only while the pool's buffer is full.
func (a *Async) Execute(ctx context.Context, op Operation) (any, error) {
	if a.syncFallback {
		value, err := op.Run(ctx, a.registry)
		if err != nil {
			return nil, err
		}

		return newAsyncResult(value), nil
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, ErrShutdown
	}

	future := newFuture()
	t := task{ctx: context.WithoutCancel(ctx), op: op, future: future}

	select {
	case a.tasks <- t:
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "scheduling async operation")
	}

	return newAsyncResult(future), nil
}

// Name returns "async".
func (a *Async) Name() string { return NameAsync }

// Shutdown stops accepting operations and waits for scheduled ones to finish.
func (a *Async) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.closed || a.tasks == nil {
		a.closed = true
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.tasks)
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for async workers")
	}
}

func (a *Async) work() {
	defer a.wg.Done()

	for t := range a.tasks {
		a.run(t)
	}
}

func (a *Async) run(t task) {
	var (
		value any
		err   error
	)

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("async operation panicked: %s", fmt.Sprint(r))
		}
		if err != nil {
			a.logger.Warn("async operation failed",
				observability.Field{Key: "operation", Value: t.op.Name},
				observability.Field{Key: "error", Value: err.Error()},
			)
		}
		t.future.resolve(value, err)
	}()

	value, err = t.op.Run(t.ctx, a.registry)
}

func newAsyncResult(value any) AsyncResult {
	return AsyncResult{
		Async:     true,
		Message:   AsyncMessage,
		Result:    value,
		Timestamp: time.Now(),
	}
}
