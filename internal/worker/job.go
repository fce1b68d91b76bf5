// Package worker runs background jobs on a fixed pool of goroutines fed by
// a bounded in-memory queue.
package worker

import (
	"context"

	"github.com/google/uuid"
)

// Job is a unit of background work.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier, used in logs
	Type() string

	// Execute runs the job
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to queued jobs.
type QueueReader interface {
	// Channel returns the channel workers consume jobs from
	Channel() <-chan Job
}

// QueueWriter accepts jobs for processing.
type QueueWriter interface {
	// Enqueue adds a job to the queue without blocking.
	// Returns ErrQueueFull or ErrQueueClosed when the job cannot be accepted.
	Enqueue(job Job) error

	// Close stops the queue from accepting jobs
	Close()
}
