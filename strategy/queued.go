package strategy

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// DefaultQueue is the queue name used when none is configured.
const DefaultQueue = "n8n"

// Job is a queued operation.
type Job struct {
	ID         string    `json:"id"`
	Operation  Operation `json:"operation"`
	Queue      string    `json:"queue"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Attempts   int       `json:"attempts"`
}

// NewJob wraps op for submission to the named queue.
func NewJob(op Operation, queue string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Operation:  op,
		Queue:      queue,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Enqueuer accepts jobs for background execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *Job) error
}

// QueuedResult is returned by Queued.Execute.
type QueuedResult struct {
	Queued  bool   `json:"queued"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// Queued submits operations to a queue and returns without running them.
// Failures after submission are handled by the queue consumer.
type Queued struct {
	enqueuer Enqueuer
	queue    string
	registry *Registry
}

// NewQueued returns a queued strategy. WithEnqueuer is required.
func NewQueued(opts ...Option) (*Queued, error) {
	o := buildOptions(opts)
	if o.enqueuer == nil {
		return nil, errors.New("queued strategy requires an enqueuer")
	}

	return &Queued{
		enqueuer: o.enqueuer,
		queue:    o.queue,
		registry: o.registry,
	}, nil
}

// Execute enqueues op as a job. Only named operations can be queued; when a
// registry is configured the name must be registered.
func (q *Queued) Execute(ctx context.Context, op Operation) (any, error) {
	if !op.Serializable() {
		return nil, ErrNotSerializable
	}

	if q.registry != nil && !q.registry.Has(op.Name) {
		return nil, errors.Wrapf(ErrUnknownOperation, "%q", op.Name)
	}

	job := NewJob(op, q.queue)
	if err := q.enqueuer.Enqueue(ctx, job); err != nil {
		return nil, errors.Wrapf(err, "enqueueing %s", op.Name)
	}

	return QueuedResult{
		Queued:  true,
		Message: QueuedMessage,
		JobID:   job.ID,
	}, nil
}

// Name returns "queued".
func (q *Queued) Name() string { return NameQueued }
