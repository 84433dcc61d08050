package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/juridoc/internal/align"
	"github.com/ppiankov/juridoc/internal/cache"
	"github.com/ppiankov/juridoc/internal/extract"
	"github.com/ppiankov/juridoc/internal/extract/adapters"
	"github.com/ppiankov/juridoc/internal/llm"
	"github.com/ppiankov/juridoc/internal/model"
	"github.com/ppiankov/juridoc/internal/score"
	"github.com/ppiankov/juridoc/internal/summary"
	"github.com/ppiankov/juridoc/internal/task"
	"github.com/ppiankov/juridoc/internal/validate"
	"github.com/ppiankov/juridoc/internal/worker"
)

// Pipeline wires every component from one configuration
type Pipeline struct {
	config       model.Config
	logger       *slog.Logger
	registry     *adapters.Registry
	provider     llm.Provider
	validator    *validate.Validator
	orchestrator *extract.Orchestrator
	summarizer   *summary.Summarizer
	scorer       *score.Scorer
	outputDir    string
	entityTypes  []string
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithOutputDir writes annotated files to dir instead of next to their input
func WithOutputDir(dir string) Option {
	return func(p *Pipeline) { p.outputDir = dir }
}

// WithEntityTypes makes ProcessFile annotate these types instead of the
// ones each document requests
func WithEntityTypes(types []string) Option {
	return func(p *Pipeline) { p.entityTypes = types }
}

// WithProvider replaces the provider built from the configuration
func WithProvider(provider llm.Provider) Option {
	return func(p *Pipeline) { p.provider = provider }
}

// New builds the pipeline described by cfg
func New(cfg model.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Pipeline{
		config:   cfg,
		logger:   logger,
		registry: adapters.NewRegistry(),
		scorer:   score.NewScorer(),
	}
	for _, o := range opts {
		o(p)
	}

	if p.provider == nil {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("create provider: %w", err)
		}
		p.provider = provider
	}

	// Rate limiting is keyed by adapter name, so each LoRA adapter gets its own budget.
	// One gate bounds every model call in the process, extraction and rewriting alike.
	limited := llm.NewLimitedProvider(p.provider, worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst))
	gated := llm.NewGatedProvider(limited, worker.NewGate(cfg.LLM.MaxConcurrency))

	var capability extract.Capability = llm.NewEntityExtractor(gated, p.registry, cfg.LLM.Temperature, cfg.LLM.Retries, logger)
	if c := cache.New(cfg.Cache); c != nil {
		capability = extract.NewCachedCapability(capability, c, 0, p.provider.Name()+"|"+cfg.LLM.BaseURL, logger)
	}

	aligner := align.New(
		align.WithThreshold(cfg.Alignment.Threshold),
		align.WithWindowSlack(cfg.Alignment.WindowSlack),
		align.WithLogger(logger),
	)
	p.orchestrator = extract.NewOrchestrator(capability, aligner, logger)

	summaryOpts := []summary.Option{
		summary.WithSeparator(cfg.Summary.Separator),
		summary.WithLogger(logger),
	}
	if cfg.Summary.Rewrite {
		summaryOpts = append(summaryOpts, summary.WithRewriter(
			llm.NewSummaryRewriter(gated, p.registry, cfg.LLM.Temperature, cfg.LLM.Retries, logger)))
	}
	p.summarizer = summary.New(summaryOpts...)
	p.validator = validate.NewValidator(p.registry)

	return p, nil
}

// Provider returns the model endpoint client
func (p *Pipeline) Provider() llm.Provider {
	return p.provider
}

// Registry returns the document type registry
func (p *Pipeline) Registry() *adapters.Registry {
	return p.registry
}

// Scorer returns the evaluation scorer
func (p *Pipeline) Scorer() *score.Scorer {
	return p.scorer
}

// NewTaskManager creates a task manager running this pipeline's components
func (p *Pipeline) NewTaskManager() *task.Manager {
	tasks := p.config.Tasks
	return task.NewManager(
		task.NewRegistry(time.Duration(tasks.TTL)*time.Minute),
		p.validator,
		p.orchestrator,
		p.summarizer,
		p.logger,
		task.WithWorkers(tasks.Workers),
		task.WithQueueSize(tasks.QueueSize),
		task.WithTaskTimeout(model.Seconds(tasks.TaskTimeout)),
		task.WithAdmission(tasks.Admission, model.Seconds(tasks.SubmitTimeout)),
		task.WithFailureRatio(tasks.FailureRatio),
	)
}

// Annotate validates doc and annotates a copy of it synchronously
func (p *Pipeline) Annotate(ctx context.Context, doc *model.Document, requested []string) (*extract.Result, error) {
	types, err := p.validator.Validate(doc, requested)
	if err != nil {
		return nil, err
	}
	return p.orchestrator.Extract(ctx, doc, types)
}

// Summarize validates doc and summarizes its existing annotations
func (p *Pipeline) Summarize(ctx context.Context, doc *model.Document, requested []string) (*model.Summary, error) {
	types, err := p.validator.Validate(doc, requested)
	if err != nil {
		return nil, err
	}
	return p.summarizer.Summarize(ctx, doc, types)
}

// ProcessFile annotates one document file and writes <name>.annotated.json
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*worker.FileResult, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}

	requested := doc.ExtractionType
	if len(p.entityTypes) > 0 {
		requested = p.entityTypes
	}

	result, err := p.Annotate(ctx, doc, requested)
	if err != nil {
		return nil, fmt.Errorf("annotate %s: %w", path, err)
	}
	if result.ExceedsFailureRatio(p.config.Tasks.FailureRatio) {
		return nil, fmt.Errorf("annotate %s: %d of %d entity types failed: %s",
			path, len(result.Failures), result.Requested, result.Failures[0].Error)
	}

	outputPath := p.annotatedPath(path)
	if err := WriteJSON(outputPath, result.Document); err != nil {
		return nil, err
	}

	p.logger.Debug("document annotated", "path", path, "output", outputPath, "failed", len(result.Failures))
	return &worker.FileResult{
		Path:       path,
		OutputPath: outputPath,
		Toggled:    result.Toggled,
		Failures:   result.Failures,
	}, nil
}

func (p *Pipeline) annotatedPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".annotated.json"
	dir := p.outputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return filepath.Join(dir, name)
}

// LoadDocument reads a JSON document file
func LoadDocument(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	return &doc, nil
}

// WriteJSON writes v as indented JSON, creating parent directories
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
