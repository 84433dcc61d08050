package llm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/juridoc/internal/worker"
)

// slowProvider records the peak number of concurrent completions
type slowProvider struct {
	delay   time.Duration
	current atomic.Int32
	peak    atomic.Int32
}

func (s *slowProvider) Name() string                         { return "slow" }
func (s *slowProvider) IsAvailable(ctx context.Context) bool { return true }

func (s *slowProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	n := s.current.Add(1)
	defer s.current.Add(-1)
	for {
		old := s.peak.Load()
		if n <= old || s.peak.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(s.delay)
	return &CompletionResponse{Text: "ok", Model: req.Model}, nil
}

func TestGatedProvider_BoundsConcurrency(t *testing.T) {
	next := &slowProvider{delay: 10 * time.Millisecond}
	p := NewGatedProvider(next, worker.NewGate(2))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Complete(context.Background(), CompletionRequest{Model: "subpoema-isparat"}); err != nil {
				t.Errorf("Complete failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak := next.peak.Load(); peak > 2 {
		t.Errorf("Expected at most 2 concurrent completions, saw %d", peak)
	}
	if p.Name() != "slow" {
		t.Errorf("Expected wrapped provider name, got %s", p.Name())
	}
}

func TestGatedProvider_DeadlineWhileWaiting(t *testing.T) {
	gate := worker.NewGate(1)
	_ = gate.Acquire(context.Background())
	defer gate.Release()

	next := &mockProvider{replies: []mockReply{{text: "ok"}}}
	p := NewGatedProvider(next, gate)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Complete(ctx, CompletionRequest{Model: "subpoema-isparat"})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
	if len(next.requests) != 0 {
		t.Errorf("Expected no upstream call, got %d", len(next.requests))
	}
}

func TestGatedProvider_SlotFreeDuringRetryBackoff(t *testing.T) {
	gate := worker.NewGate(1)
	next := &mockProvider{replies: []mockReply{{err: ErrUnavailable}, {text: "<p> Ion </p>"}}}
	p := NewGatedProvider(next, gate)

	inFlight := -1
	original := retrySleepFunc
	retrySleepFunc = func(ctx context.Context, d time.Duration) error {
		inFlight = gate.InFlight()
		return nil
	}
	t.Cleanup(func() { retrySleepFunc = original })

	resp, err := completeWithRetry(context.Background(), p, CompletionRequest{Model: "subpoema-isreclamant"}, 1, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("completeWithRetry failed: %v", err)
	}
	if resp.Text != "<p> Ion </p>" {
		t.Errorf("Unexpected text %q", resp.Text)
	}
	if inFlight != 0 {
		t.Errorf("Expected the slot released during backoff, %d held", inFlight)
	}
}
