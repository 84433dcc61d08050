package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrQueueFull is returned when no queue slot frees up in time
	ErrQueueFull = errors.New("queue full")

	// ErrQueueClosed is returned after Shutdown
	ErrQueueClosed = errors.New("queue is shutting down")
)

// Handler runs one queued item. The context carries the per-item timeout.
type Handler func(ctx context.Context, id string)

// Queue is a bounded FIFO of ids drained by a fixed set of workers.
// Each id is handed to exactly one worker.
type Queue struct {
	handle  Handler
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan string
	wg   sync.WaitGroup
	once sync.Once

	done     chan struct{}
	doneOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

// Option configures a Queue
type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan string, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewQueue creates a queue and starts its workers
func NewQueue(handle Handler, logger *slog.Logger, opts ...Option) *Queue {
	q := &Queue{
		handle:  handle,
		logger:  logger,
		workers: 4,
		timeout: 15 * time.Minute,
		ch:      make(chan string, 64),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for id := range q.ch {
					started := time.Now()
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					q.handle(ctx, id)
					cancel()

					q.logger.Debug("item handled", "worker_id", workerID, "task_id", id, "elapsed_ms", time.Since(started).Milliseconds())
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks until the id is queued, ctx is done, or the queue shuts down.
// A done ctx yields ErrQueueFull.
func (q *Queue) Enqueue(ctx context.Context, id string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- id:
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "task_id", id)
	select {
	case q.ch <- id:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ErrQueueFull
	}
}

// TryEnqueue queues the id only if a slot is free right now
func (q *Queue) TryEnqueue(id string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- id:
		return nil
	default:
		return ErrQueueFull
	}
}

// Len returns the number of ids waiting for a worker
func (q *Queue) Len() int {
	return len(q.ch)
}

// Shutdown stops accepting ids and waits for queued and in-flight ids to
// finish, or for ctx to end.
func (q *Queue) Shutdown(ctx context.Context) {
	q.doneOnce.Do(func() { close(q.done) })

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	finished := make(chan struct{})
	go func() { defer close(finished); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-finished:
		q.logger.Info("queue drained, shutdown complete")
	}
}
