package batch

import (
	"context"
	"runtime"
	"sync"
)

// fileJob is one file to load. Index is the file position in the expanded
// pattern list and is used to restore input order.
type fileJob struct {
	Index int
	Path  string
}

// fileOutcome is what a worker reports for one job: a result or an error.
type fileOutcome struct {
	Job    fileJob
	Result *FileResult
	Err    error
}

type loadFunc func(context.Context, fileJob) (*FileResult, error)

// WorkerPool loads files in parallel. Outcomes arrive in completion order.
type WorkerPool struct {
	workers  int
	jobs     chan fileJob
	outcomes chan fileOutcome
	wg       sync.WaitGroup
	start    sync.Once
}

// NewWorkerPool creates a pool with N workers.
// If workers <= 0, defaults to runtime.NumCPU().
func NewWorkerPool(workers, bufferSize int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if bufferSize <= 0 {
		bufferSize = workers * 2
	}

	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan fileJob, bufferSize),
		outcomes: make(chan fileOutcome, bufferSize),
	}
}

// Start launches the workers. Calls after the first are no-ops.
func (p *WorkerPool) Start(ctx context.Context, load loadFunc) {
	p.start.Do(func() {
		p.wg.Add(p.workers)
		for i := 0; i < p.workers; i++ {
			go p.work(ctx, load)
		}
	})
}

// work drains the job queue. After cancellation remaining jobs are skipped
// so Close can still finish.
func (p *WorkerPool) work(ctx context.Context, load loadFunc) {
	defer p.wg.Done()
	for job := range p.jobs {
		if ctx.Err() != nil {
			continue
		}
		res, err := load(ctx, job)
		select {
		case p.outcomes <- fileOutcome{Job: job, Result: res, Err: err}:
		case <-ctx.Done():
		}
	}
}

// Submit queues a job. It fails once ctx is canceled.
func (p *WorkerPool) Submit(ctx context.Context, job fileJob) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- job:
		return nil
	}
}

// Close stops accepting jobs, waits for the workers and closes Outcomes.
func (p *WorkerPool) Close() {
	close(p.jobs)
	p.wg.Wait()
	close(p.outcomes)
}

// Outcomes returns the channel of per-job outcomes.
func (p *WorkerPool) Outcomes() <-chan fileOutcome {
	return p.outcomes
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int {
	return p.workers
}
