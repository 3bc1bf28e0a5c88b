package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
)

type recordingChecker struct {
	mu    sync.Mutex
	seen  []uuid.UUID
	delay time.Duration
	err   error
}

func (r *recordingChecker) Run(ctx context.Context, id uuid.UUID) (compliance.Result, error) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	r.seen = append(r.seen, id)
	r.mu.Unlock()
	return compliance.Result{Compliant: true}, r.err
}

func (r *recordingChecker) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestCheckQueue_DrainsOnShutdown(t *testing.T) {
	rc := &recordingChecker{delay: 5 * time.Millisecond}
	q := NewCheckQueue(rc, nil, WithWorkers(2), WithQueueSize(16))

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, 10, rc.count())
}

func TestCheckQueue_RejectsAfterShutdown(t *testing.T) {
	q := NewCheckQueue(&recordingChecker{}, nil, WithWorkers(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{DocumentID: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestCheckQueue_BackpressureRespectsContext(t *testing.T) {
	block := make(chan struct{})
	checker := checkerFunc(func(ctx context.Context, id uuid.UUID) (compliance.Result, error) {
		<-block
		return compliance.Result{}, nil
	})
	q := NewCheckQueue(checker, nil, WithWorkers(1), WithQueueSize(1))

	// one job in the worker, one in the buffer
	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}))
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{DocumentID: uuid.New()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
	q.Shutdown(context.Background())
}

func TestCheckQueue_FailuresDoNotStopWorkers(t *testing.T) {
	rc := &recordingChecker{err: common.PreconditionError("text not available")}
	q := NewCheckQueue(rc, nil, WithWorkers(1))
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}))
	}
	q.Shutdown(context.Background())
	assert.Equal(t, 3, rc.count())
}

type checkerFunc func(ctx context.Context, id uuid.UUID) (compliance.Result, error)

func (f checkerFunc) Run(ctx context.Context, id uuid.UUID) (compliance.Result, error) {
	return f(ctx, id)
}
