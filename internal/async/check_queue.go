package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/observability"
)

// CheckQueue is a fixed worker pool over a bounded channel. Enqueue blocks
// while the channel is full; Shutdown stops intake and waits for queued jobs.
type CheckQueue struct {
	checker Checker
	logger  *slog.Logger
	metrics *observability.Metrics
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// senders hold the read lock so Shutdown never closes ch under them
	mu     sync.RWMutex
	closed bool
}

type Option func(*CheckQueue)

func WithWorkers(n int) Option {
	return func(q *CheckQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *CheckQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(q *CheckQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(q *CheckQueue) { q.metrics = m }
}

func NewCheckQueue(checker Checker, logger *slog.Logger, opts ...Option) *CheckQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &CheckQueue{
		checker: checker,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *CheckQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.work(i + 1)
		}
	})
}

func (q *CheckQueue) work(workerID int) {
	defer q.wg.Done()
	q.logger.Debug("queue.worker.started", "worker_id", workerID)

	for job := range q.ch {
		q.metrics.SetQueueDepth(len(q.ch))
		q.process(workerID, job)
	}

	q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
}

func (q *CheckQueue) process(workerID int, job Job) {
	ctx := context.Background()
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	res, err := q.checker.Run(ctx, job.DocumentID)
	switch {
	case errors.Is(err, common.ErrPrecondition), errors.Is(err, common.ErrNotFound):
		q.logger.Info("queue.check.skipped", "worker_id", workerID, "document_id", job.DocumentID, "reason", err)
	case err != nil:
		q.logger.Error("queue.check.failed", "worker_id", workerID, "document_id", job.DocumentID, "error", err)
	default:
		q.logger.Info("queue.check.ok",
			"worker_id", workerID,
			"document_id", job.DocumentID,
			"compliant", res.Compliant,
			"issues", len(res.Issues),
			"waited_ms", time.Since(job.SubmittedAt).Milliseconds(),
		)
	}
}

func (q *CheckQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "document_id", job.DocumentID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue.full", "document_id", job.DocumentID)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	q.metrics.SetQueueDepth(len(q.ch))
	q.logger.Debug("queue.enqueued", "document_id", job.DocumentID)
	return nil
}

func (q *CheckQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
