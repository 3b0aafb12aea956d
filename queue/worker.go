package queue

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-n8n/observability"
	"github.com/lexfrei/go-n8n/strategy"
)

// Worker defaults.
const (
	DefaultMaxAttempts = 3
	DefaultErrorDelay  = time.Second
)

// WorkerConfig configures a Worker.
type WorkerConfig struct {
	// MaxAttempts is how many times a job runs before it is dead-lettered.
	MaxAttempts int
	// ErrorDelay is the pause after a failed dequeue.
	ErrorDelay time.Duration
	Logger     observability.Logger
}

// Worker consumes jobs from a queue and runs them through a registry.
// Failed jobs are re-enqueued until MaxAttempts, then dead-lettered.
type Worker struct {
	queue       Queue
	registry    *strategy.Registry
	maxAttempts int
	errorDelay  time.Duration
	logger      observability.Logger
}

// NewWorker returns a worker draining q.
func NewWorker(q Queue, reg *strategy.Registry, cfg WorkerConfig) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.ErrorDelay <= 0 {
		cfg.ErrorDelay = DefaultErrorDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}

	return &Worker{
		queue:       q,
		registry:    reg,
		maxAttempts: cfg.MaxAttempts,
		errorDelay:  cfg.ErrorDelay,
		logger:      cfg.Logger,
	}
}

// Run processes jobs until ctx is done. It returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, err := w.queue.Dequeue(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			w.logger.Error("dequeue failed", observability.Field{Key: "error", Value: err.Error()})

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.errorDelay):
			}
			continue
		}

		w.Handle(ctx, job)
	}
}

// Handle runs one job and applies the retry and dead-letter policy.
func (w *Worker) Handle(ctx context.Context, job *strategy.Job) {
	job.Attempts++

	logger := w.logger.With(
		observability.Field{Key: "job_id", Value: job.ID},
		observability.Field{Key: "operation", Value: job.Operation.Name},
		observability.Field{Key: "attempt", Value: job.Attempts},
	)

	_, err := job.Operation.Run(ctx, w.registry)
	if err == nil {
		logger.Debug("job completed")
		return
	}

	if errors.Is(err, strategy.ErrUnknownOperation) || job.Attempts >= w.maxAttempts {
		logger.Error("job failed permanently", observability.Field{Key: "error", Value: err.Error()})

		if dlErr := w.queue.DeadLetter(ctx, job, err); dlErr != nil {
			logger.Error("dead-letter failed", observability.Field{Key: "error", Value: dlErr.Error()})
		}
		return
	}

	logger.Warn("job failed, re-enqueueing", observability.Field{Key: "error", Value: err.Error()})

	if enqErr := w.queue.Enqueue(ctx, job); enqErr != nil {
		logger.Error("re-enqueue failed", observability.Field{Key: "error", Value: enqErr.Error()})

		if dlErr := w.queue.DeadLetter(ctx, job, errors.CombineErrors(err, enqErr)); dlErr != nil {
			logger.Error("dead-letter failed", observability.Field{Key: "error", Value: dlErr.Error()})
		}
	}
}
