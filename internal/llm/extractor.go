package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/juridoc/internal/extract"
	"github.com/ppiankov/juridoc/internal/extract/adapters"
)

// retrySleepFunc is the sleep function used between retries (injectable for tests)
var retrySleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EntityExtractor is the extraction capability backed by a model provider.
// It picks the document type's adapter, renders the prompt and parses the
// returned paragraphs into spans.
type EntityExtractor struct {
	provider    Provider
	registry    *adapters.Registry
	temperature float32
	retries     int
	logger      *slog.Logger
}

// NewEntityExtractor creates a new extractor. retries is the number of extra
// attempts made when the endpoint is unavailable.
func NewEntityExtractor(provider Provider, registry *adapters.Registry, temperature float32, retries int, logger *slog.Logger) *EntityExtractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EntityExtractor{
		provider:    provider,
		registry:    registry,
		temperature: temperature,
		retries:     max(retries, 0),
		logger:      logger,
	}
}

// ExtractEntities returns the spans the adapter for req.Entity finds in the document
func (x *EntityExtractor) ExtractEntities(ctx context.Context, req extract.Request) ([]string, error) {
	adapter, err := x.registry.FindAdapter(req.DocumentType)
	if err != nil {
		return nil, err
	}

	prompt, err := adapter.Annotation(req.Entity)
	if err != nil {
		return nil, err
	}

	text := extract.MarkParagraphs(req.Paragraphs)
	if text == "" {
		text = req.Text
	}

	resp, err := completeWithRetry(ctx, x.provider, CompletionRequest{
		Model:       prompt.Model,
		System:      prompt.System,
		Prompt:      prompt.Render(text, nil),
		MaxTokens:   prompt.MaxTokens,
		Temperature: x.temperature,
	}, x.retries, x.logger)
	if err != nil {
		return nil, err
	}

	spans := extract.ParseSpans(resp.Text)
	x.logger.Debug("entities extracted",
		"entity_type", req.Entity,
		"model", prompt.Model,
		"spans", len(spans),
		"tokens", resp.TokensUsed)
	return spans, nil
}

// completeWithRetry retries ErrUnavailable with exponential backoff.
// Timeouts are not retried: the request already used its whole budget.
func completeWithRetry(ctx context.Context, provider Provider, req CompletionRequest, retries int, logger *slog.Logger) (*CompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		resp, err := provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !errors.Is(err, ErrUnavailable) || attempt == retries {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		logger.Warn("model endpoint unavailable, retrying",
			"model", req.Model,
			"attempt", attempt+1,
			"backoff_ms", backoff.Milliseconds(),
			"error", err)
		if err := retrySleepFunc(ctx, backoff); err != nil {
			return nil, fmt.Errorf("%w: %w", lastErr, err)
		}
	}
	return nil, lastErr
}
