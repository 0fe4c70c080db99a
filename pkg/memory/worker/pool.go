// Package worker provides an asynchronous ingest pool for the memory layer.
//
// The pool decouples document compression from the API's HTTP hot path:
// a learn request returns as soon as the job is queued, and the document
// event stream signals when the record lands in the store.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/parchmentlabs/engram/pkg/memory"
)

var (
	defaultNumWorkers   uint = 1
	defaultJobQueueSize uint = 64
)

// Job is a unit of ingest work for the pool to execute.
type Job struct {
	Path string
}

// Config is the configuration options for the ingest pool.
type Config struct {
	// Manager performs the actual learn operation.
	Manager *memory.Manager

	// NumWorkers is the number of background workers in the pool.
	// Defaults to 1; compression runs against a single model handle,
	// so extra workers only parallelize file reads.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Pool processes ingest jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Manager == nil {
		return nil, fmt.Errorf("memory manager is required")
	}

	if c.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("ingest job queued", "path", job.Path)
		return true
	default:
		p.logger.Error("ingest job not queued, queue full, job dropped", "path", job.Path)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the API server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("ingest worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("ingest worker stopped", "worker_id", id)
}

// processJob learns a single document. Errors are logged, not returned;
// the caller already gave up the request context when it enqueued.
func (p *Pool) processJob(job Job) {
	id, err := p.config.Manager.Learn(context.Background(), job.Path)
	if err != nil {
		p.logger.Error("async learn failed", "path", job.Path, "error", err)
		return
	}

	p.logger.Info("document learned", "id", id, "path", job.Path)
}
