package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ppiankov/juridoc/internal/align"
	"github.com/ppiankov/juridoc/internal/model"
)

// ErrEmptyDocument is returned when a document flattens to no text
var ErrEmptyDocument = errors.New("document has no text to extract from")

// Request is one extraction call: one entity type on one document
type Request struct {
	DocumentType string
	Entity       model.EntityType
	Text         string   // flattened document text
	Paragraphs   []string // paragraph texts in reading order
}

// Capability is the external entity extraction service
type Capability interface {
	ExtractEntities(ctx context.Context, req Request) ([]string, error)
}

// Result is a best-effort annotated document plus the entity types that failed
type Result struct {
	Document  *model.Document
	Requested int // entity types attempted
	Failures  []model.TypeFailure
	Toggled   map[model.EntityType]int // words newly flagged per type
	Missed    map[model.EntityType]int // spans dropped below the alignment threshold
}

// Succeeded returns how many requested types were extracted and aligned
func (r *Result) Succeeded(requested int) int {
	return requested - len(r.Failures)
}

// ExceedsFailureRatio reports whether failed/requested types reached ratio.
// A ratio outside (0, 1] means 1.0: fail only when every type failed.
func (r *Result) ExceedsFailureRatio(ratio float64) bool {
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	if len(r.Failures) == 0 || r.Requested == 0 {
		return false
	}
	return float64(len(r.Failures))/float64(r.Requested) >= ratio
}

// Orchestrator runs one extraction per entity type and aligns the results
// onto a single output document.
type Orchestrator struct {
	capability Capability
	aligner    *align.Aligner
	logger     *slog.Logger
}

// NewOrchestrator creates a new orchestrator. Concurrent inference is bounded
// by the capability itself, per model call rather than per entity type.
func NewOrchestrator(capability Capability, aligner *align.Aligner, logger *slog.Logger) *Orchestrator {
	if aligner == nil {
		aligner = align.New()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		capability: capability,
		aligner:    aligner,
		logger:     logger,
	}
}

type typeOutcome struct {
	spans   []string
	err     error
	elapsed time.Duration
}

// Extract annotates a copy of doc with every requested entity type (all
// types when types is empty). Capability calls run concurrently and are
// joined before alignment; a failing type is recorded in Result.Failures
// without affecting the others. The input document is never mutated.
func (o *Orchestrator) Extract(ctx context.Context, doc *model.Document, types []model.EntityType) (*Result, error) {
	if len(types) == 0 {
		types = model.AllEntityTypes
	}
	for _, e := range types {
		if !e.Valid() {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownEntityType, string(e))
		}
	}

	out := doc.Clone()
	text := out.Flatten()
	if text == "" {
		return nil, ErrEmptyDocument
	}
	paragraphs := out.ParagraphTexts()

	outcomes := make([]typeOutcome, len(types))
	var wg sync.WaitGroup
	for i, e := range types {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = o.extractOne(ctx, Request{
				DocumentType: out.DocumentTypeName,
				Entity:       e,
				Text:         text,
				Paragraphs:   paragraphs,
			})
		}()
	}
	wg.Wait()

	result := &Result{
		Document:  out,
		Requested: len(types),
		Toggled:   make(map[model.EntityType]int, len(types)),
		Missed:    make(map[model.EntityType]int, len(types)),
	}

	// Alignment runs after the barrier, in request order, so every type
	// was extracted from the same unannotated text.
	for i, e := range types {
		outcome := outcomes[i]
		if outcome.err != nil {
			o.logger.Warn("extraction failed",
				"entity_type", e,
				"elapsed_ms", outcome.elapsed.Milliseconds(),
				"error", outcome.err)
			result.Failures = append(result.Failures, model.TypeFailure{
				EntityType: e,
				Error:      outcome.err.Error(),
			})
			continue
		}

		aligned, err := o.aligner.Align(out.Words(), e, outcome.spans)
		if err != nil {
			result.Failures = append(result.Failures, model.TypeFailure{
				EntityType: e,
				Error:      err.Error(),
			})
			continue
		}
		result.Toggled[e] = len(aligned.Toggled)
		result.Missed[e] = aligned.Missed

		o.logger.Info("entity type annotated",
			"entity_type", e,
			"spans", len(outcome.spans),
			"accepted", aligned.Accepted,
			"missed", aligned.Missed,
			"words", len(aligned.Toggled),
			"elapsed_ms", outcome.elapsed.Milliseconds())
	}

	return result, nil
}

func (o *Orchestrator) extractOne(ctx context.Context, req Request) typeOutcome {
	start := time.Now()
	spans, err := o.capability.ExtractEntities(ctx, req)
	return typeOutcome{spans: spans, err: err, elapsed: time.Since(start)}
}
