package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestQueue_HandlesEachIDOnce(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)

	q := NewQueue(func(ctx context.Context, id string) {
		mu.Lock()
		seen[id]++
		mu.Unlock()
	}, discardLogger(), WithWorkers(4), WithQueueSize(16))

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		if err := q.Enqueue(context.Background(), id); err != nil {
			t.Fatalf("Enqueue(%s) failed: %v", id, err)
		}
	}

	q.Shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	for _, id := range ids {
		if seen[id] != 1 {
			t.Errorf("expected %s handled once, got %d", id, seen[id])
		}
	}
}

func TestQueue_TryEnqueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	q := NewQueue(func(ctx context.Context, id string) {
		started <- struct{}{}
		<-release
	}, discardLogger(), WithWorkers(1), WithQueueSize(1))

	if err := q.TryEnqueue("running"); err != nil {
		t.Fatalf("TryEnqueue failed: %v", err)
	}
	<-started

	if err := q.TryEnqueue("waiting"); err != nil {
		t.Fatalf("TryEnqueue failed: %v", err)
	}
	if err := q.TryEnqueue("overflow"); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(release)
	q.Shutdown(context.Background())
}

func TestQueue_EnqueueBlocksUntilTimeout(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	q := NewQueue(func(ctx context.Context, id string) {
		started <- struct{}{}
		<-release
	}, discardLogger(), WithWorkers(1), WithQueueSize(1))

	_ = q.Enqueue(context.Background(), "running")
	<-started
	_ = q.Enqueue(context.Background(), "waiting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := q.Enqueue(ctx, "blocked")
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if time.Since(start) < 25*time.Millisecond {
		t.Errorf("expected Enqueue to block until the deadline")
	}

	close(release)
	q.Shutdown(context.Background())
}

func TestQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewQueue(func(ctx context.Context, id string) {}, discardLogger())
	q.Shutdown(context.Background())

	if err := q.Enqueue(context.Background(), "late"); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
	if err := q.TryEnqueue("late"); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}

	// Second shutdown is a no-op
	q.Shutdown(context.Background())
}

func TestQueue_ProcessTimeout(t *testing.T) {
	var timedOut atomic.Bool

	q := NewQueue(func(ctx context.Context, id string) {
		<-ctx.Done()
		timedOut.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
	}, discardLogger(), WithWorkers(1), WithProcessTimeout(20*time.Millisecond))

	_ = q.Enqueue(context.Background(), "slow")
	q.Shutdown(context.Background())

	if !timedOut.Load() {
		t.Error("expected the handler context to hit its deadline")
	}
}

func TestGate_BoundsConcurrency(t *testing.T) {
	gate := NewGate(2)
	if gate.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", gate.Capacity())
	}

	var current, maxSeen int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer gate.Release()

			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
		}()
	}
	wg.Wait()

	if maxSeen > 2 {
		t.Errorf("expected at most 2 concurrent holders, saw %d", maxSeen)
	}
	if gate.InFlight() != 0 {
		t.Errorf("expected no holders after completion, got %d", gate.InFlight())
	}
}

func TestGate_AcquireRespectsContext(t *testing.T) {
	gate := NewGate(1)
	_ = gate.Acquire(context.Background())
	defer gate.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := gate.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
