package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerQueue_ProcessesEveryJob(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]uuid.UUID{}
	)
	q := NewWorkerQueue(func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[job.Path] = job.ID
		return nil
	}, nil, WithWorkers(3), WithQueueSize(2))

	paths := []string{"a.pdf", "b.png", "c.jpg", "d.pdf", "e.pdf"}
	for _, p := range paths {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p}))
	}
	q.Shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, len(paths))
	for _, id := range seen {
		assert.NotEqual(t, uuid.Nil, id)
	}
}

func TestWorkerQueue_HandlerErrorsDoNotStopWorkers(t *testing.T) {
	var n atomic.Int32
	q := NewWorkerQueue(func(_ context.Context, job Job) error {
		n.Add(1)
		return errors.New("boom")
	}, nil, WithWorkers(1))

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: "x.pdf"}))
	}
	q.Shutdown(context.Background())
	assert.EqualValues(t, 3, n.Load())
}

func TestWorkerQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewWorkerQueue(func(context.Context, Job) error { return nil }, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{Path: "late.pdf"}), ErrClosed)
}

func TestWorkerQueue_EnqueueHonoursContextWhenFull(t *testing.T) {
	release := make(chan struct{})
	q := NewWorkerQueue(func(context.Context, Job) error {
		<-release
		return nil
	}, nil, WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(release)
		q.Shutdown(context.Background())
	}()

	// One job occupies the worker, one fills the buffer.
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "1"}))
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "2"}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, Job{Path: "3"}), context.DeadlineExceeded)
}

func TestWorkerQueue_HandlerGetsTimeout(t *testing.T) {
	got := make(chan bool, 1)
	q := NewWorkerQueue(func(ctx context.Context, _ Job) error {
		_, ok := ctx.Deadline()
		got <- ok
		return nil
	}, nil, WithProcessTimeout(time.Minute))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "a.pdf"}))
	q.Shutdown(context.Background())
	assert.True(t, <-got)
}
