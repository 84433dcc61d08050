package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/juridoc/internal/worker"
)

// GatedProvider bounds in-flight completions with a gate shared by every
// caller in the process, extraction and summary rewriting alike. The slot is
// held for one attempt only, never across retry backoff.
type GatedProvider struct {
	Provider
	gate *worker.Gate
}

// NewGatedProvider wraps next with gate
func NewGatedProvider(next Provider, gate *worker.Gate) *GatedProvider {
	return &GatedProvider{
		Provider: next,
		gate:     gate,
	}
}

// Complete waits for an inference slot, then delegates
func (p *GatedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := p.gate.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("wait for inference slot (%s): %w", req.Model, classify(err))
	}
	defer p.gate.Release()

	return p.Provider.Complete(ctx, req)
}
