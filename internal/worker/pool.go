package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Pool manages worker goroutines that process jobs from a queue until the
// queue is closed and drained, or the pool is stopped.
type Pool struct {
	// queue provides the jobs to process
	queue QueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// jobTimeout bounds a single job execution; zero means no limit
	jobTimeout time.Duration

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger

	// errorHandler is called when a job fails; errors are always logged
	errorHandler func(job Job, err error)

	startOnce sync.Once
}

// PoolConfig holds configuration options for the pool
type PoolConfig struct {
	// WorkerCount determines how many concurrent workers to start.
	// If zero or negative, defaults to 1
	WorkerCount int

	// JobTimeout bounds each job execution. Zero disables the limit.
	JobTimeout time.Duration
}

// DefaultPoolConfig returns a PoolConfig with reasonable defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount: 2,
		JobTimeout:  5 * time.Second,
	}
}

// NewPool creates a pool reading from queue.
func NewPool(queue QueueReader, config PoolConfig, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "worker_pool"))

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		queue:       queue,
		workerCount: workerCount,
		jobTimeout:  config.JobTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler sets a callback for failed jobs. It must be called before Start.
func (p *Pool) SetErrorHandler(handler func(job Job, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Calling it more than once has no effect.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", slog.Int("worker_count", p.workerCount))
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.work(i)
		}
	})
}

// Stop cancels in-flight jobs and waits for all workers to exit.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Wait blocks until every worker has exited, which happens once the queue
// is closed and drained.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	log := p.logger.With(slog.Int("worker_id", id))

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue.Channel():
			if !ok {
				log.Debug("queue closed, worker exiting")
				return
			}
			p.run(log, job)
		}
	}
}

func (p *Pool) run(log *slog.Logger, job Job) {
	ctx := p.ctx
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}

	log = log.With(
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()))

	start := time.Now()
	err := p.execute(ctx, job)
	if err != nil {
		log.Error("job failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		if p.errorHandler != nil {
			p.errorHandler(job, err)
		}
		return
	}
	log.Debug("job completed", slog.Duration("duration", time.Since(start)))
}

// execute runs the job and turns a panic into an error so one bad job
// cannot take a worker down.
func (p *Pool) execute(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Execute(ctx)
}
