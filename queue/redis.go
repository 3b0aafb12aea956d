package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lexfrei/go-n8n/strategy"
)

// Redis queue defaults.
const (
	DefaultPrefix       = "n8n:queue"
	DefaultBlockTimeout = time.Second
)

// RedisConfig configures a RedisQueue.
type RedisConfig struct {
	// Queue is the queue name read by Dequeue and used for jobs without one.
	Queue string
	// Prefix namespaces the Redis keys.
	Prefix string
	// BlockTimeout bounds each BRPOP so cancellation is observed.
	BlockTimeout time.Duration
}

// RedisQueue stores jobs in Redis lists. Jobs are pushed with LPUSH and
// popped with BRPOP on "{prefix}:{queue}"; dead letters go to "{prefix}:{queue}:dead".
type RedisQueue struct {
	rdb          goredis.UniversalClient
	queue        string
	prefix       string
	blockTimeout time.Duration
}

// NewRedisQueue returns a queue backed by rdb.
func NewRedisQueue(rdb goredis.UniversalClient, cfg RedisConfig) *RedisQueue {
	if cfg.Queue == "" {
		cfg.Queue = strategy.DefaultQueue
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &RedisQueue{
		rdb:          rdb,
		queue:        cfg.Queue,
		prefix:       cfg.Prefix,
		blockTimeout: cfg.BlockTimeout,
	}
}

// Key returns the list holding jobs of the named queue.
func (q *RedisQueue) Key(queue string) string {
	if queue == "" {
		queue = q.queue
	}

	return q.prefix + ":" + queue
}

// DeadKey returns the dead-letter list of the named queue.
func (q *RedisQueue) DeadKey(queue string) string {
	return q.Key(queue) + ":dead"
}

// Enqueue pushes job onto its queue.
func (q *RedisQueue) Enqueue(ctx context.Context, job *strategy.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "encoding job")
	}

	if err := q.rdb.LPush(ctx, q.Key(job.Queue), data).Err(); err != nil {
		return errors.Wrapf(err, "pushing job %s", job.ID)
	}

	return nil
}

// Dequeue waits for the next job on the configured queue.
func (q *RedisQueue) Dequeue(ctx context.Context) (*strategy.Job, error) {
	key := q.Key("")

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "dequeue")
		}

		res, err := q.rdb.BRPop(ctx, q.blockTimeout, key).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := contextError(ctx); ctxErr != nil {
				return nil, errors.Wrap(ctxErr, "dequeue")
			}
			return nil, errors.Wrap(err, "popping job")
		}

		// BRPOP replies with [key, value]
		return decodeJob(res[1])
	}
}

// TryDequeue pops the next job without blocking, or returns ErrEmpty.
func (q *RedisQueue) TryDequeue(ctx context.Context) (*strategy.Job, error) {
	data, err := q.rdb.RPop(ctx, q.Key("")).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, errors.Wrap(err, "popping job")
	}

	return decodeJob(data)
}

// Len returns the number of waiting jobs on the configured queue.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.Key("")).Result()
	if err != nil {
		return 0, errors.Wrap(err, "queue length")
	}

	return n, nil
}

// DeadLetter pushes job onto the dead-letter list of its queue.
func (q *RedisQueue) DeadLetter(ctx context.Context, job *strategy.Job, cause error) error {
	data, err := json.Marshal(newDeadLetter(job, cause))
	if err != nil {
		return errors.Wrap(err, "encoding dead letter")
	}

	if err := q.rdb.LPush(ctx, q.DeadKey(job.Queue), data).Err(); err != nil {
		return errors.Wrapf(err, "dead-lettering job %s", job.ID)
	}

	return nil
}

// DeadLetters returns the dead letters of the configured queue, newest first.
func (q *RedisQueue) DeadLetters(ctx context.Context) ([]DeadLetter, error) {
	items, err := q.rdb.LRange(ctx, q.DeadKey(""), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "reading dead letters")
	}

	out := make([]DeadLetter, 0, len(items))
	for _, item := range items {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(item), &dl); err != nil {
			return nil, errors.Wrap(err, "decoding dead letter")
		}
		out = append(out, dl)
	}

	return out, nil
}

func decodeJob(data string) (*strategy.Job, error) {
	var job strategy.Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, errors.Wrap(err, "decoding job")
	}

	return &job, nil
}

// contextError reports ctx's error, treating a passed deadline as expired
// even if the context has not observed it yet. go-redis derives its socket
// deadline from ctx, so a read timeout can surface first.
func contextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}

	return nil
}
