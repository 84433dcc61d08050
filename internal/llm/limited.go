package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/juridoc/internal/worker"
)

// LimitedProvider rate-limits completions per model name. Each LoRA adapter
// gets its own budget so one busy entity type cannot starve the others.
type LimitedProvider struct {
	Provider
	limiter *worker.Limiter
}

// NewLimitedProvider wraps next with limiter
func NewLimitedProvider(next Provider, limiter *worker.Limiter) *LimitedProvider {
	return &LimitedProvider{
		Provider: next,
		limiter:  limiter,
	}
}

// Complete waits for the model's rate budget, then delegates
func (p *LimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := p.limiter.Wait(ctx, req.Model); err != nil {
		return nil, fmt.Errorf("rate limit (%s): %w", req.Model, classify(err))
	}
	return p.Provider.Complete(ctx, req)
}
