package queue

import (
	"context"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-n8n/strategy"
)

// DefaultCapacity is the MemoryQueue buffer size when none is given.
const DefaultCapacity = 256

// MemoryQueue is an in-process bounded queue.
type MemoryQueue struct {
	jobs chan *strategy.Job

	mu   sync.Mutex
	dead []DeadLetter
}

// NewMemoryQueue returns a queue holding up to capacity jobs.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &MemoryQueue{jobs: make(chan *strategy.Job, capacity)}
}

// Enqueue adds job without blocking.
func (q *MemoryQueue) Enqueue(_ context.Context, job *strategy.Job) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue waits for the next job.
func (q *MemoryQueue) Dequeue(ctx context.Context) (*strategy.Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "dequeue")
	}
}

// TryDequeue returns the next job or ErrEmpty.
func (q *MemoryQueue) TryDequeue() (*strategy.Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	default:
		return nil, ErrEmpty
	}
}

// Len returns the number of waiting jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

// DeadLetter records a failed job.
func (q *MemoryQueue) DeadLetter(_ context.Context, job *strategy.Job, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.dead = append(q.dead, newDeadLetter(job, cause))

	return nil
}

// DeadLetters returns the recorded failures.
func (q *MemoryQueue) DeadLetters() []DeadLetter {
	q.mu.Lock()
	defer q.mu.Unlock()

	return slices.Clone(q.dead)
}
