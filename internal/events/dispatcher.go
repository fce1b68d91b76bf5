package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/worker"
)

// DispatcherConfig sizes the dispatcher's queue and worker pool.
type DispatcherConfig struct {
	QueueSize int
	Workers   int
	// Timeout bounds the delivery of one event to all handlers
	Timeout time.Duration
}

// Dispatcher delivers events to a target emitter from a background worker
// pool. EmitEvent only enqueues, so a slow or failing handler never reaches
// the code that emitted the event.
type Dispatcher struct {
	target EventEmitter
	queue  *worker.Queue
	pool   *worker.Pool
	logger *slog.Logger
}

var _ EventEmitter = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher delivering to target. Call Start before
// emitting and Stop on shutdown.
func NewDispatcher(target EventEmitter, cfg DispatcherConfig, log *slog.Logger) *Dispatcher {
	if target == nil {
		panic("target emitter cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "event_dispatcher"))

	queue := worker.NewQueue(cfg.QueueSize, log)
	pool := worker.NewPool(queue, worker.PoolConfig{WorkerCount: cfg.Workers, JobTimeout: cfg.Timeout}, log)
	pool.SetErrorHandler(func(job worker.Job, err error) {
		log.Warn("event delivery failed",
			slog.String("event_id", job.ID().String()),
			slog.String("job_type", job.Type()),
			slog.String("error", err.Error()))
	})

	return &Dispatcher{target: target, queue: queue, pool: pool, logger: log}
}

// Start launches the delivery workers.
func (d *Dispatcher) Start() {
	d.pool.Start()
}

// Stop stops accepting events and waits until queued events are delivered
// or ctx expires, in which case in-flight deliveries are cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.queue.Close()

	drained := make(chan struct{})
	go func() {
		d.pool.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		d.pool.Stop()
		return nil
	case <-ctx.Done():
		d.pool.Stop()
		return fmt.Errorf("event dispatcher stopped with %d undelivered events: %w", d.queue.Len(), ctx.Err())
	}
}

// EmitEvent implements EventEmitter by queueing the event. It fails only
// when the queue is full or closed.
func (d *Dispatcher) EmitEvent(ctx context.Context, event *Event) error {
	job := &deliveryJob{
		event:  event,
		target: d.target,
		logger: logger.FromContextOrDefault(ctx, d.logger),
	}
	if err := d.queue.Enqueue(job); err != nil {
		return fmt.Errorf("failed to queue event %s: %w", event.Type, err)
	}
	return nil
}

// deliveryJob hands one event to the target emitter. It runs on the pool's
// context, not the emitter's, since the emitting request is usually over by
// then; the request logger is carried along.
type deliveryJob struct {
	event  *Event
	target EventEmitter
	logger *slog.Logger
}

func (j *deliveryJob) ID() uuid.UUID { return j.event.ID }

func (j *deliveryJob) Type() string { return "event:" + string(j.event.Type) }

func (j *deliveryJob) Execute(ctx context.Context) error {
	return j.target.EmitEvent(logger.WithLogger(ctx, j.logger), j.event)
}
