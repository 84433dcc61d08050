package llm

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/juridoc/internal/worker"
)

func TestLimitedProvider_Complete(t *testing.T) {
	next := &mockProvider{replies: []mockReply{{text: "ok"}}}
	p := NewLimitedProvider(next, worker.NewLimiter(0, 1))

	resp, err := p.Complete(context.Background(), CompletionRequest{Model: "subpoema-istemei"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Unexpected text %q", resp.Text)
	}
	if p.Name() != "mock" {
		t.Errorf("Expected wrapped provider name, got %s", p.Name())
	}
}

func TestLimitedProvider_WaitsPerModel(t *testing.T) {
	next := &mockProvider{replies: []mockReply{{text: "ok"}}}
	p := NewLimitedProvider(next, worker.NewLimiter(0.01, 1))

	if _, err := p.Complete(context.Background(), CompletionRequest{Model: "a"}); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	// A different adapter has its own budget
	if _, err := p.Complete(context.Background(), CompletionRequest{Model: "b"}); err != nil {
		t.Fatalf("other model failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Complete(ctx, CompletionRequest{Model: "a"}); err == nil {
		t.Error("Expected the exhausted model to hit the deadline")
	}
	if len(next.requests) != 2 {
		t.Errorf("Expected 2 upstream calls, got %d", len(next.requests))
	}
}
