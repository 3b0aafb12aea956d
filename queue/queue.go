// Package queue provides the job queues consumed by the queued strategy and
// the worker that drains them.
package queue

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-n8n/strategy"
)

var (
	// ErrQueueFull is returned when a bounded queue cannot accept a job.
	ErrQueueFull = errors.New("queue is full")
	// ErrEmpty is returned by non-blocking reads on an empty queue.
	ErrEmpty = errors.New("queue is empty")
)

// Source yields jobs. Dequeue blocks until a job is available or ctx is done.
type Source interface {
	Dequeue(ctx context.Context) (*strategy.Job, error)
}

// Queue is a job queue with a dead-letter destination.
type Queue interface {
	strategy.Enqueuer
	Source
	DeadLetter(ctx context.Context, job *strategy.Job, cause error) error
}

// DeadLetter is a job that exhausted its attempts.
type DeadLetter struct {
	Job      *strategy.Job `json:"job"`
	Error    string        `json:"error"`
	FailedAt time.Time     `json:"failed_at"`
}

func newDeadLetter(job *strategy.Job, cause error) DeadLetter {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	return DeadLetter{Job: job, Error: msg, FailedAt: time.Now().UTC()}
}
