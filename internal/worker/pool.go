package worker

import (
	"context"
	"slices"
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

type sequencedJob struct {
	seq int
	job Job
}

type sequencedResult struct {
	seq    int
	result Result
}

// Pool runs jobs on a fixed number of workers. Wait returns results in
// submission order regardless of completion order.
type Pool struct {
	workers    int
	jobQueue   chan sequencedJob
	results    chan sequencedResult
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	mu   sync.Mutex
	next int

	collected   []sequencedResult
	collectDone chan struct{}
}

// NewPool creates a new worker pool bound to ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:     workers,
		jobQueue:    make(chan sequencedJob, workers*2),
		results:     make(chan sequencedResult, workers*2),
		ctx:         ctx,
		cancelFunc:  cancel,
		collectDone: make(chan struct{}),
	}
}

// Start starts the worker pool and its result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

// collect drains results as they arrive so workers never block on a full
// results buffer while Submit is still feeding the queue.
func (p *Pool) collect() {
	defer close(p.collectDone)
	for r := range p.results {
		p.collected = append(p.collected, r)
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case sj, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := sj.job.Execute(p.ctx)
			select {
			case p.results <- sequencedResult{seq: sj.seq, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit submits a job to the pool. It reports false if the pool was shut down.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	seq := p.next
	p.next++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- sequencedJob{seq: seq, job: job}:
		return true
	}
}

// Wait closes the pool to new jobs, waits for every job and returns the
// results in submission order.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone

	collected := p.collected
	slices.SortFunc(collected, func(a, b sequencedResult) int {
		return a.seq - b.seq
	})

	results := make([]Result, len(collected))
	for i, r := range collected {
		results[i] = r.result
	}
	return results
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
