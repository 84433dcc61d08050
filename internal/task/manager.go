package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/juridoc/internal/extract"
	"github.com/ppiankov/juridoc/internal/model"
	"github.com/ppiankov/juridoc/internal/validate"
	"github.com/ppiankov/juridoc/internal/worker"
)

// Annotator runs the per-entity-type extraction for one document
type Annotator interface {
	Extract(ctx context.Context, doc *model.Document, types []model.EntityType) (*extract.Result, error)
}

// Summarizer builds a summary from an annotated document
type Summarizer interface {
	Summarize(ctx context.Context, doc *model.Document, types []model.EntityType) (*model.Summary, error)
}

// Manager owns task admission, execution and result retrieval
type Manager struct {
	registry   *Registry
	validator  *validate.Validator
	annotator  Annotator
	summarizer Summarizer
	logger     *slog.Logger

	queue         *worker.Queue
	queueOpts     []worker.Option
	admission     string
	submitTimeout time.Duration
	failureRatio  float64
}

// Option configures a Manager
type Option func(*Manager)

// WithWorkers sets how many tasks execute at once
func WithWorkers(n int) Option {
	return func(m *Manager) { m.queueOpts = append(m.queueOpts, worker.WithWorkers(n)) }
}

// WithQueueSize sets how many tasks may wait for a worker
func WithQueueSize(n int) Option {
	return func(m *Manager) { m.queueOpts = append(m.queueOpts, worker.WithQueueSize(n)) }
}

// WithTaskTimeout bounds the execution of one task
func WithTaskTimeout(d time.Duration) Option {
	return func(m *Manager) { m.queueOpts = append(m.queueOpts, worker.WithProcessTimeout(d)) }
}

// WithAdmission selects what Submit does when the queue is full:
// model.AdmissionBlock waits up to timeout, model.AdmissionFailFast does not wait.
func WithAdmission(policy string, timeout time.Duration) Option {
	return func(m *Manager) {
		if policy == model.AdmissionBlock || policy == model.AdmissionFailFast {
			m.admission = policy
		}
		if timeout > 0 {
			m.submitTimeout = timeout
		}
	}
}

// WithFailureRatio fails a task once failed/requested entity types reaches
// ratio. 1.0 fails only when every requested type failed.
func WithFailureRatio(ratio float64) Option {
	return func(m *Manager) {
		if ratio > 0 && ratio <= 1 {
			m.failureRatio = ratio
		}
	}
}

// NewManager creates a manager and starts its workers
func NewManager(registry *Registry, validator *validate.Validator, annotator Annotator, summarizer Summarizer, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if validator == nil {
		validator = validate.NewValidator(nil)
	}
	m := &Manager{
		registry:      registry,
		validator:     validator,
		annotator:     annotator,
		summarizer:    summarizer,
		logger:        logger,
		admission:     model.AdmissionBlock,
		submitTimeout: 5 * time.Second,
		failureRatio:  1.0,
	}
	for _, o := range opts {
		o(m)
	}
	m.queue = worker.NewQueue(m.execute, logger, m.queueOpts...)
	return m
}

// Submit validates doc, creates a pending task and queues it. Validation
// and admission failures are returned synchronously and leave no task behind.
func (m *Manager) Submit(ctx context.Context, kind model.TaskKind, doc *model.Document, requested []string) (string, error) {
	types, err := m.validator.Validate(doc, requested)
	if err != nil {
		return "", err
	}

	t := m.registry.Create(kind, doc.Clone(), types)

	if err := m.enqueue(ctx, t.ID); err != nil {
		m.registry.Delete(t.ID)
		m.logger.Warn("task rejected", "task_id", t.ID, "kind", kind, "error", err)
		return "", fmt.Errorf("%w: %w", ErrCapacityExceeded, err)
	}

	m.logger.Info("task submitted",
		"task_id", t.ID,
		"kind", kind,
		"document_type", doc.DocumentTypeName,
		"entity_types", len(types),
		"queued", m.queue.Len())
	return t.ID, nil
}

func (m *Manager) enqueue(ctx context.Context, id string) error {
	if m.admission == model.AdmissionFailFast {
		return m.queue.TryEnqueue(id)
	}
	ctx, cancel := context.WithTimeout(ctx, m.submitTimeout)
	defer cancel()
	return m.queue.Enqueue(ctx, id)
}

// Status returns a snapshot of the task
func (m *Manager) Status(id string) (model.Task, error) {
	return m.registry.Get(id)
}

// Result returns the finished task. It fails with ErrNotReady while the
// task runs, ErrKindMismatch for the wrong kind, and wraps ErrTaskFailed
// with the stored error for failed tasks. The snapshot is returned with
// every error except ErrUnknownTask.
func (m *Manager) Result(id string, kind model.TaskKind) (model.Task, error) {
	t, err := m.registry.Get(id)
	if err != nil {
		return model.Task{}, err
	}
	if t.Kind != kind {
		return t, fmt.Errorf("%w: %s is a %s task", ErrKindMismatch, id, t.Kind)
	}

	switch t.Status {
	case model.StatusCompleted:
		return t, nil
	case model.StatusFailed:
		return t, fmt.Errorf("%w: %s", ErrTaskFailed, t.Error)
	case model.StatusCancelled:
		return t, ErrTaskCancelled
	default:
		return t, fmt.Errorf("%w: %s", ErrNotReady, t.Status)
	}
}

// Cancel cancels a task that no worker has claimed yet
func (m *Manager) Cancel(id string) (model.Task, error) {
	t, err := m.registry.Cancel(id)
	if err != nil {
		return t, err
	}
	m.logger.Info("task cancelled", "task_id", id)
	return t, nil
}

// Queued returns the number of tasks waiting for a worker
func (m *Manager) Queued() int {
	return m.queue.Len()
}

// Shutdown stops admitting tasks and waits for queued ones to finish
func (m *Manager) Shutdown(ctx context.Context) {
	m.queue.Shutdown(ctx)
}

// execute runs one task on a queue worker. Claim guarantees that a task
// runs at most once even if its id were queued twice.
func (m *Manager) execute(ctx context.Context, id string) {
	t, err := m.registry.Claim(id)
	if errors.Is(err, ErrUnknownTask) {
		m.logger.Warn("queued task vanished before it ran", "task_id", id, "error", err)
		return
	}
	if err != nil {
		m.logger.Debug("task skipped", "task_id", id, "error", err)
		return
	}
	m.logger.Info("task processing", "task_id", id, "kind", t.Kind)

	switch t.Kind {
	case model.KindSummarization:
		m.summarize(ctx, t)
	default:
		m.annotate(ctx, t)
	}
}

func (m *Manager) annotate(ctx context.Context, t model.Task) {
	start := time.Now()

	if _, err := m.registry.Transition(t.ID, model.StatusExtractingContent, "Extracting document content"); err != nil {
		m.logger.Error("task transition failed", "task_id", t.ID, "error", err)
		return
	}
	paragraphs := len(t.Document.ParagraphTexts())
	if paragraphs == 0 {
		m.fail(t.ID, fmt.Errorf("%w: %w", ErrTotalExtractionFailure, extract.ErrEmptyDocument), nil)
		return
	}

	progress := fmt.Sprintf("Annotating %d entity types over %d paragraphs", len(t.Types), paragraphs)
	if _, err := m.registry.Transition(t.ID, model.StatusAnnotating, progress); err != nil {
		m.logger.Error("task transition failed", "task_id", t.ID, "error", err)
		return
	}

	result, err := m.annotator.Extract(ctx, t.Document, t.Types)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyDocument) {
			err = fmt.Errorf("%w: %w", ErrTotalExtractionFailure, err)
		}
		m.fail(t.ID, err, nil)
		return
	}

	if result.ExceedsFailureRatio(m.failureRatio) {
		m.fail(t.ID, totalFailure(result.Failures, len(t.Types)), result.Failures)
		return
	}

	if _, err := m.registry.Complete(t.ID, result.Document, result.Failures); err != nil {
		m.logger.Error("task completion failed", "task_id", t.ID, "error", err)
		return
	}
	m.logger.Info("task completed",
		"task_id", t.ID,
		"succeeded", result.Succeeded(len(t.Types)),
		"failed", len(result.Failures),
		"elapsed_ms", time.Since(start).Milliseconds())
}

func (m *Manager) summarize(ctx context.Context, t model.Task) {
	start := time.Now()

	summary, err := m.summarizer.Summarize(ctx, t.Document, t.Types)
	if err != nil {
		m.fail(t.ID, err, nil)
		return
	}

	if _, err := m.registry.CompleteSummary(t.ID, summary); err != nil {
		m.logger.Error("task completion failed", "task_id", t.ID, "error", err)
		return
	}
	m.logger.Info("task completed",
		"task_id", t.ID,
		"warnings", len(summary.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds())
}

func (m *Manager) fail(id string, cause error, failures []model.TypeFailure) {
	if _, err := m.registry.Fail(id, cause, failures); err != nil {
		m.logger.Error("task failure not recorded", "task_id", id, "error", err)
		return
	}
	m.logger.Error("task failed", "task_id", id, "error", cause)
}

func totalFailure(failures []model.TypeFailure, requested int) error {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.EntityType, f.Error))
	}
	return fmt.Errorf("%w: %d of %d entity types failed (%s)",
		ErrTotalExtractionFailure, len(failures), requested, strings.Join(parts, "; "))
}
