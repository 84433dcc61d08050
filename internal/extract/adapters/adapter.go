package adapters

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/juridoc/internal/align"
	"github.com/ppiankov/juridoc/internal/model"
)

// ErrUnsupportedDocumentType is returned when no adapter handles a document type
var ErrUnsupportedDocumentType = errors.New("unsupported document type")

// SummaryMaxTokens caps every summary rewrite completion
const SummaryMaxTokens = 3000

// annotationMaxTokens caps extraction completions per entity type.
// Names are short, the factual narrative is long.
var annotationMaxTokens = map[model.EntityType]int{
	model.EntityReclamant: 150,
	model.EntityParat:     150,
	model.EntityTemei:     400,
	model.EntityProba:     300,
	model.EntityCerere:    700,
	model.EntitySelected:  2300,
}

// Prompt is everything needed to issue one completion for one entity type
type Prompt struct {
	Model     string // adapter (LoRA) or base model name served by the endpoint
	System    string
	Request   string // may contain {isReclamant} style placeholders
	MaxTokens int
}

// Render builds the user message. Placeholders of the form {isX} in the
// request are replaced from context; unknown placeholders are left as is.
func (p Prompt) Render(text string, context map[model.EntityType]string) string {
	request := p.Request
	for e, value := range context {
		request = strings.ReplaceAll(request, "{"+e.FlagName()+"}", value)
	}
	return UserPrompt(text, request)
}

// UserPrompt formats document text and a request the way the adapters were trained
func UserPrompt(text, request string) string {
	return fmt.Sprintf("## Document Text\n\n%s\n\n## Request\n%s", text, request)
}

// Adapter supplies prompts and model names for one document type
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter handles the given document type name
	CanHandle(documentTypeName string) bool

	// Annotation returns the extraction prompt for entity type e
	Annotation(e model.EntityType) (Prompt, error)

	// Summary returns the rewrite prompt for entity type e
	Summary(e model.EntityType) (Prompt, error)

	// PostProcessSummary cleans up rewritten summary text for entity type e
	PostProcessSummary(e model.EntityType, text string) string
}

// Registry manages document type adapters
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the built-in document types
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	registry.Register(NewSubpoenaAdapter())
	registry.Register(NewCounterclaimAdapter())

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the adapter for a document type name.
// There is no generic fallback: prompts only exist for trained document types.
func (r *Registry) FindAdapter(documentTypeName string) (Adapter, error) {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(documentTypeName) {
			return adapter, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (supported: %s)",
		ErrUnsupportedDocumentType, documentTypeName, strings.Join(r.SupportedTypes(), ", "))
}

// SupportedTypes lists the document type names handled by registered adapters
func (r *Registry) SupportedTypes() []string {
	types := make([]string, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		if named, ok := adapter.(interface{ DocumentTypeName() string }); ok {
			types = append(types, named.DocumentTypeName())
		} else {
			types = append(types, adapter.Name())
		}
	}
	return types
}

// BaseAdapter provides the table-driven behavior shared by document types
type BaseAdapter struct {
	name              string
	typeName          string
	annotationSystem  string
	summarySystem     string
	annotationModels  map[model.EntityType]string
	summaryModels     map[model.EntityType]string
	annotationPrompts map[model.EntityType]string
	summaryPrompts    map[model.EntityType]string
}

// Name returns the adapter name
func (b *BaseAdapter) Name() string {
	return b.name
}

// DocumentTypeName returns the document type name as it appears in documents
func (b *BaseAdapter) DocumentTypeName() string {
	return b.typeName
}

// CanHandle compares names after case folding and diacritic unification,
// so "Întâmpinare" and "întâmpinare" both match.
func (b *BaseAdapter) CanHandle(documentTypeName string) bool {
	return align.Normalize(documentTypeName) == align.Normalize(b.typeName)
}

// Annotation returns the extraction prompt for entity type e
func (b *BaseAdapter) Annotation(e model.EntityType) (Prompt, error) {
	request, ok := b.annotationPrompts[e]
	if !ok {
		return Prompt{}, fmt.Errorf("%s annotation: %w: %q", b.name, model.ErrUnknownEntityType, string(e))
	}
	return Prompt{
		Model:     b.annotationModels[e],
		System:    b.annotationSystem,
		Request:   request,
		MaxTokens: annotationMaxTokens[e],
	}, nil
}

// Summary returns the rewrite prompt for entity type e
func (b *BaseAdapter) Summary(e model.EntityType) (Prompt, error) {
	request, ok := b.summaryPrompts[e]
	if !ok {
		return Prompt{}, fmt.Errorf("%s summary: %w: %q", b.name, model.ErrUnknownEntityType, string(e))
	}
	return Prompt{
		Model:     b.summaryModels[e],
		System:    b.summarySystem,
		Request:   request,
		MaxTokens: SummaryMaxTokens,
	}, nil
}

// PostProcessSummary trims surrounding whitespace
func (b *BaseAdapter) PostProcessSummary(e model.EntityType, text string) string {
	return strings.TrimSpace(text)
}
