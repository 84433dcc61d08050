package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ppiankov/juridoc/internal/model"
)

// DefaultSeparator joins separate runs of flagged words within one field
const DefaultSeparator = "\n"

// Rewriter turns aggregated entity text into summary prose
type Rewriter interface {
	Rewrite(ctx context.Context, documentType string, e model.EntityType, text string, related map[model.EntityType]string) (string, error)
}

// Summarizer builds a Summary from the flags of an annotated document
type Summarizer struct {
	separator string
	rewriter  Rewriter
	logger    *slog.Logger
}

// Option configures a Summarizer
type Option func(*Summarizer)

// WithSeparator sets the separator placed between runs
func WithSeparator(sep string) Option {
	return func(s *Summarizer) {
		if sep != "" {
			s.separator = sep
		}
	}
}

// WithRewriter enables rewriting every aggregated field with a model
func WithRewriter(r Rewriter) Option {
	return func(s *Summarizer) {
		s.rewriter = r
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Summarizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a summarizer. Without a rewriter the output is fully deterministic.
func New(opts ...Option) *Summarizer {
	s := &Summarizer{
		separator: DefaultSeparator,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Runs returns the maximal contiguous runs of words flagged for e, in
// reading order, each run's words joined by a single space. Runs continue
// across paragraph and page boundaries. Blank words neither extend nor
// break a run.
func Runs(doc *model.Document, e model.EntityType) ([]string, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownEntityType, string(e))
	}

	var (
		runs    []string
		current []string
	)
	for _, w := range doc.Words() {
		text := strings.Join(strings.Fields(w.Text), " ")
		if text == "" {
			continue
		}
		if on, _ := w.Flag(e); on {
			current = append(current, text)
			continue
		}
		if len(current) > 0 {
			runs = append(runs, strings.Join(current, " "))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		runs = append(runs, strings.Join(current, " "))
	}
	return runs, nil
}

// Aggregate fills the field of every requested type (all when empty) with
// its runs joined by the separator. Unrequested fields stay empty.
func (s *Summarizer) Aggregate(doc *model.Document, types []model.EntityType) (*model.Summary, error) {
	if len(types) == 0 {
		types = model.AllEntityTypes
	}

	summary := model.NewSummary(doc)
	for _, e := range types {
		runs, err := Runs(doc, e)
		if err != nil {
			return nil, err
		}
		if err := summary.SetField(e, strings.Join(runs, s.separator)); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// Summarize aggregates and, when a rewriter is configured, rewrites every
// non-empty field concurrently. A failed rewrite keeps the aggregated text
// and adds a warning instead of failing the summary.
func (s *Summarizer) Summarize(ctx context.Context, doc *model.Document, types []model.EntityType) (*model.Summary, error) {
	if len(types) == 0 {
		types = model.AllEntityTypes
	}

	summary, err := s.Aggregate(doc, types)
	if err != nil {
		return nil, err
	}
	if s.rewriter == nil {
		return summary, nil
	}

	// Claim and narrative prompts are phrased with the claimant's name and gender
	claimants, _ := Runs(doc, model.EntityReclamant)
	related := map[model.EntityType]string{
		model.EntityReclamant: strings.Join(claimants, ", "),
	}

	rewritten := make([]string, len(types))
	failures := make([]error, len(types))
	var wg sync.WaitGroup
	for i, e := range types {
		text, _ := summary.Field(e)
		if text == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			rewritten[i], failures[i] = s.rewriter.Rewrite(ctx, doc.DocumentTypeName, e, text, related)
		}()
	}
	wg.Wait()

	for i, e := range types {
		if failures[i] != nil {
			s.logger.Warn("summary rewrite failed", "entity_type", e, "error", failures[i])
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: rewrite failed: %v", e, failures[i]))
			continue
		}
		if rewritten[i] != "" {
			_ = summary.SetField(e, rewritten[i])
		}
	}
	return summary, nil
}
