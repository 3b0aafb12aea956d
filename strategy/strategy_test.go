package strategy_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-n8n/strategy"
)

type memoryEnqueuer struct {
	mu   sync.Mutex
	jobs []*strategy.Job
	err  error
}

func (m *memoryEnqueuer) Enqueue(_ context.Context, job *strategy.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)

	return nil
}

func constant(v any) strategy.Operation {
	return strategy.Func(func(context.Context) (any, error) { return v, nil })
}

func TestSync(t *testing.T) {
	t.Parallel()

	s := strategy.NewSync()

	got, err := s.Execute(context.Background(), constant("x"))
	require.NoError(t, err)

	assert.Equal(t, "x", got)
	assert.Equal(t, "sync", s.Name())
}

func TestSyncPropagatesErrors(t *testing.T) {
	t.Parallel()

	s := strategy.NewSync()
	op := strategy.Func(func(context.Context) (any, error) { return nil, assert.AnError })

	_, err := s.Execute(context.Background(), op)
	require.ErrorIs(t, err, assert.AnError)
}

func TestSyncNamedOperation(t *testing.T) {
	t.Parallel()

	reg := strategy.NewRegistry()
	reg.Register("greet", func(_ context.Context, args json.RawMessage) (any, error) {
		var in struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, err
		}
		return "hello " + in.Name, nil
	})

	s := strategy.NewSync(strategy.WithRegistry(reg))

	op, err := strategy.Named("greet", map[string]string{"name": "n8n"})
	require.NoError(t, err)

	got, err := s.Execute(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, "hello n8n", got)

	unknown, err := strategy.Named("missing", nil)
	require.NoError(t, err)

	_, err = s.Execute(context.Background(), unknown)
	require.ErrorIs(t, err, strategy.ErrUnknownOperation)
}

func TestNamedRequiresName(t *testing.T) {
	t.Parallel()

	_, err := strategy.Named("", nil)
	require.Error(t, err)
}

func TestOperationSerializable(t *testing.T) {
	t.Parallel()

	named, err := strategy.Named("n8n.request", map[string]any{"method": "GET"})
	require.NoError(t, err)

	assert.True(t, named.Serializable())
	assert.False(t, constant(1).Serializable())
}

func TestAsync(t *testing.T) {
	t.Parallel()

	a := strategy.NewAsync(strategy.WithWorkers(2))
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	release := make(chan struct{})
	op := strategy.Func(func(context.Context) (any, error) {
		<-release
		return "done", nil
	})

	got, err := a.Execute(context.Background(), op)
	require.NoError(t, err)

	result, ok := got.(strategy.AsyncResult)
	require.True(t, ok)
	assert.True(t, result.Async)
	assert.Equal(t, strategy.AsyncMessage, result.Message)
	assert.False(t, result.Timestamp.IsZero())
	assert.Equal(t, "async", a.Name())

	future, ok := result.Future()
	require.True(t, ok)

	select {
	case <-future.Done():
		t.Fatal("operation finished before it was released")
	default:
	}

	close(release)

	value, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", value)
}

func TestAsyncOutlivesCallerContext(t *testing.T) {
	t.Parallel()

	a := strategy.NewAsync()
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())

	op := strategy.Func(func(ctx context.Context) (any, error) {
		time.Sleep(20 * time.Millisecond)
		return nil, ctx.Err()
	})

	got, err := a.Execute(ctx, op)
	require.NoError(t, err)
	cancel()

	future, ok := got.(strategy.AsyncResult).Future()
	require.True(t, ok)

	_, err = future.Wait(context.Background())
	require.NoError(t, err)
}

func TestAsyncRecoversPanics(t *testing.T) {
	t.Parallel()

	a := strategy.NewAsync()
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	got, err := a.Execute(context.Background(), strategy.Func(func(context.Context) (any, error) {
		panic("boom")
	}))
	require.NoError(t, err)

	future, _ := got.(strategy.AsyncResult).Future()
	_, err = future.Wait(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestAsyncSyncFallback(t *testing.T) {
	t.Parallel()

	a := strategy.NewAsync(strategy.WithSyncFallback())

	var ran atomic.Bool
	got, err := a.Execute(context.Background(), strategy.Func(func(context.Context) (any, error) {
		ran.Store(true)
		return 42, nil
	}))
	require.NoError(t, err)

	assert.True(t, ran.Load(), "fallback must run inline")

	result, ok := got.(strategy.AsyncResult)
	require.True(t, ok)
	assert.True(t, result.Async)
	assert.Equal(t, strategy.AsyncMessage, result.Message)
	assert.Equal(t, 42, result.Result)

	_, isFuture := result.Future()
	assert.False(t, isFuture)

	_, err = a.Execute(context.Background(), strategy.Func(func(context.Context) (any, error) {
		return nil, assert.AnError
	}))
	require.ErrorIs(t, err, assert.AnError)

	require.NoError(t, a.Shutdown(context.Background()))
}

func TestAsyncShutdown(t *testing.T) {
	t.Parallel()

	a := strategy.NewAsync(strategy.WithWorkers(1))

	var finished atomic.Int32
	for range 3 {
		_, err := a.Execute(context.Background(), strategy.Func(func(context.Context) (any, error) {
			time.Sleep(5 * time.Millisecond)
			finished.Add(1)
			return nil, nil
		}))
		require.NoError(t, err)
	}

	require.NoError(t, a.Shutdown(context.Background()))
	assert.Equal(t, int32(3), finished.Load(), "shutdown drains scheduled operations")

	_, err := a.Execute(context.Background(), constant(1))
	require.ErrorIs(t, err, strategy.ErrShutdown)

	require.NoError(t, a.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestFutureWaitHonoursContext(t *testing.T) {
	t.Parallel()

	a := strategy.NewAsync()
	release := make(chan struct{})
	t.Cleanup(func() {
		close(release)
		_ = a.Shutdown(context.Background())
	})

	got, err := a.Execute(context.Background(), strategy.Func(func(context.Context) (any, error) {
		<-release
		return nil, nil
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	future, _ := got.(strategy.AsyncResult).Future()
	_, err = future.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueued(t *testing.T) {
	t.Parallel()

	enq := &memoryEnqueuer{}
	q, err := strategy.NewQueued(strategy.WithEnqueuer(enq), strategy.WithQueueName("workflows"))
	require.NoError(t, err)

	var ran atomic.Bool
	reg := strategy.NewRegistry()
	reg.Register("sync-workflows", func(context.Context, json.RawMessage) (any, error) {
		ran.Store(true)
		return nil, nil
	})

	op, err := strategy.Named("sync-workflows", map[string]any{"limit": 10})
	require.NoError(t, err)

	got, err := q.Execute(context.Background(), op)
	require.NoError(t, err)

	result, ok := got.(strategy.QueuedResult)
	require.True(t, ok)
	assert.True(t, result.Queued)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, "queued", q.Name())

	require.Len(t, enq.jobs, 1)
	job := enq.jobs[0]
	assert.Equal(t, result.JobID, job.ID)
	assert.Equal(t, "workflows", job.Queue)
	assert.Equal(t, "sync-workflows", job.Operation.Name)
	assert.JSONEq(t, `{"limit":10}`, string(job.Operation.Args))
	assert.False(t, job.EnqueuedAt.IsZero())
	assert.False(t, ran.Load(), "queued operations must not run inline")
}

func TestQueuedRejectsClosures(t *testing.T) {
	t.Parallel()

	enq := &memoryEnqueuer{}
	q, err := strategy.NewQueued(strategy.WithEnqueuer(enq))
	require.NoError(t, err)

	_, err = q.Execute(context.Background(), constant("x"))
	require.ErrorIs(t, err, strategy.ErrNotSerializable)
	assert.Empty(t, enq.jobs)
}

func TestQueuedChecksRegistry(t *testing.T) {
	t.Parallel()

	q, err := strategy.NewQueued(
		strategy.WithEnqueuer(&memoryEnqueuer{}),
		strategy.WithRegistry(strategy.NewRegistry()),
	)
	require.NoError(t, err)

	op, err := strategy.Named("missing", nil)
	require.NoError(t, err)

	_, err = q.Execute(context.Background(), op)
	require.ErrorIs(t, err, strategy.ErrUnknownOperation)
}

func TestQueuedEnqueueError(t *testing.T) {
	t.Parallel()

	q, err := strategy.NewQueued(strategy.WithEnqueuer(&memoryEnqueuer{err: errors.New("queue down")}))
	require.NoError(t, err)

	op, err := strategy.Named("anything", nil)
	require.NoError(t, err)

	_, err = q.Execute(context.Background(), op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue down")
}

func TestJobJSON(t *testing.T) {
	t.Parallel()

	op, err := strategy.Named("n8n.request", map[string]any{"method": "GET", "endpoint": "workflows"})
	require.NoError(t, err)

	job := strategy.NewJob(op, "n8n")

	data, err := json.Marshal(job)
	require.NoError(t, err)

	var decoded strategy.Job
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, job.ID, decoded.ID)
	assert.Equal(t, "n8n.request", decoded.Operation.Name)
	assert.True(t, decoded.Operation.Serializable())
	assert.JSONEq(t, string(op.Args), string(decoded.Operation.Args))
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []strategy.Option
		wantName string
		wantErr  bool
	}{
		{name: "sync", input: "sync", wantName: "sync"},
		{name: "async", input: "async", opts: []strategy.Option{strategy.WithSyncFallback()}, wantName: "async"},
		{name: "queued", input: "QUEUED", opts: []strategy.Option{strategy.WithEnqueuer(&memoryEnqueuer{})}, wantName: "queued"},
		{name: "queued without enqueuer", input: "queued", wantErr: true},
		{name: "unknown falls back to sync", input: "parallel", wantName: "sync"},
		{name: "empty falls back to sync", input: "", wantName: "sync"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := strategy.New(tt.input, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}
