package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// Queue is a buffered job queue satisfying both QueueReader and QueueWriter.
type Queue struct {
	mu     sync.RWMutex
	jobs   chan Job
	logger *slog.Logger
	closed bool
}

var (
	_ QueueReader = (*Queue)(nil)
	_ QueueWriter = (*Queue)(nil)
)

// NewQueue creates a queue holding at most size jobs.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		jobs:   make(chan Job, size),
		logger: logger.With(slog.String("component", "job_queue")),
	}
}

// Enqueue implements QueueWriter. It never blocks: a full queue rejects the job.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			slog.String("job_id", job.ID().String()),
			slog.String("job_type", job.Type()),
			slog.Int("queue_len", len(q.jobs)),
			slog.Int("queue_cap", cap(q.jobs)))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Close implements QueueWriter. Jobs already queued stay available to workers.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed")
	}
}

// Channel implements QueueReader.
func (q *Queue) Channel() <-chan Job {
	return q.jobs
}

// Len returns the number of queued jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}
