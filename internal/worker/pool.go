package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a bounded number of goroutines
type Pool struct {
	workers int

	// OnResult, if set, is called from the worker goroutine after each job
	// finishes. It must be safe for concurrent use.
	OnResult func(index int, result Result)
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the concurrency bound
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes jobs and returns their results in job order. Jobs that had not
// started when ctx was done are skipped and leave a nil result at their index.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	// Sized to hold every index so enqueueing never blocks
	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				if ctx.Err() != nil {
					continue
				}
				result := jobs[i].Execute(ctx)
				results[i] = result
				if p.OnResult != nil {
					p.OnResult(i, result)
				}
			}
		}()
	}
	wg.Wait()

	return results
}
