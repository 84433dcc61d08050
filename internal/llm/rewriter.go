package llm

import (
	"context"
	"log/slog"

	"github.com/ppiankov/juridoc/internal/extract/adapters"
	"github.com/ppiankov/juridoc/internal/model"
)

// SummaryRewriter turns aggregated entity text into the third-person legal
// prose of a case summary, using the document type's summary models.
type SummaryRewriter struct {
	provider    Provider
	registry    *adapters.Registry
	temperature float32
	retries     int
	logger      *slog.Logger
}

// NewSummaryRewriter creates a new rewriter
func NewSummaryRewriter(provider Provider, registry *adapters.Registry, temperature float32, retries int, logger *slog.Logger) *SummaryRewriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SummaryRewriter{
		provider:    provider,
		registry:    registry,
		temperature: temperature,
		retries:     max(retries, 0),
		logger:      logger,
	}
}

// Rewrite rewrites text for entity type e. related carries the aggregated
// text of other entity types for prompts that reference them.
func (r *SummaryRewriter) Rewrite(ctx context.Context, documentType string, e model.EntityType, text string, related map[model.EntityType]string) (string, error) {
	adapter, err := r.registry.FindAdapter(documentType)
	if err != nil {
		return "", err
	}

	prompt, err := adapter.Summary(e)
	if err != nil {
		return "", err
	}

	resp, err := completeWithRetry(ctx, r.provider, CompletionRequest{
		Model:       prompt.Model,
		System:      prompt.System,
		Prompt:      prompt.Render(text, related),
		MaxTokens:   prompt.MaxTokens,
		Temperature: r.temperature,
	}, r.retries, r.logger)
	if err != nil {
		return "", err
	}

	return adapter.PostProcessSummary(e, resp.Text), nil
}
