package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/juridoc/internal/extract"
	"github.com/ppiankov/juridoc/internal/extract/adapters"
	"github.com/ppiankov/juridoc/internal/model"
)

// mockProvider implements Provider
type mockProvider struct {
	mu       sync.Mutex
	requests []CompletionRequest
	replies  []mockReply // consumed in order; the last one repeats
}

type mockReply struct {
	text string
	err  error
}

func (m *mockProvider) Name() string                         { return "mock" }
func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	reply := m.replies[min(len(m.requests), len(m.replies))-1]
	if reply.err != nil {
		return nil, reply.err
	}
	return &CompletionResponse{Text: reply.text, Model: req.Model}, nil
}

// noSleep replaces retrySleepFunc for the duration of a test
func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	original := retrySleepFunc
	retrySleepFunc = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	t.Cleanup(func() { retrySleepFunc = original })
	return &slept
}

func subpoenaRequest(e model.EntityType) extract.Request {
	return extract.Request{
		DocumentType: adapters.SubpoenaTypeName,
		Entity:       e,
		Text:         "Reclamant: Ion Popescu În fapt",
		Paragraphs:   []string{"Reclamant: Ion Popescu", "În fapt"},
	}
}

func TestEntityExtractor_ExtractEntities(t *testing.T) {
	provider := &mockProvider{replies: []mockReply{{text: "<p> Ion Popescu </p>"}}}
	x := NewEntityExtractor(provider, adapters.NewRegistry(), 0.2, 1, nil)

	spans, err := x.ExtractEntities(context.Background(), subpoenaRequest(model.EntityReclamant))
	if err != nil {
		t.Fatalf("ExtractEntities failed: %v", err)
	}
	if len(spans) != 1 || spans[0] != "Ion Popescu" {
		t.Errorf("Unexpected spans: %q", spans)
	}

	req := provider.requests[0]
	if req.Model != "subpoema-isreclamant" {
		t.Errorf("Expected subpoema-isreclamant, got %s", req.Model)
	}
	if req.MaxTokens != 150 {
		t.Errorf("Expected 150 max tokens, got %d", req.MaxTokens)
	}
	if req.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %v", req.Temperature)
	}
	if !strings.HasPrefix(req.Prompt, "## Document Text\n\n<p> Reclamant: Ion Popescu </p> <p> În fapt </p>\n\n## Request\n") {
		t.Errorf("Unexpected prompt: %q", req.Prompt)
	}
}

func TestEntityExtractor_CounterclaimAdapter(t *testing.T) {
	provider := &mockProvider{replies: []mockReply{{text: "IPJ Cluj"}}}
	x := NewEntityExtractor(provider, adapters.NewRegistry(), 0.2, 0, nil)

	req := subpoenaRequest(model.EntityParat)
	req.DocumentType = adapters.CounterclaimTypeName

	if _, err := x.ExtractEntities(context.Background(), req); err != nil {
		t.Fatalf("ExtractEntities failed: %v", err)
	}
	if provider.requests[0].Model != "counterclaim-isparat" {
		t.Errorf("Expected counterclaim-isparat, got %s", provider.requests[0].Model)
	}
}

func TestEntityExtractor_UnsupportedDocumentType(t *testing.T) {
	x := NewEntityExtractor(&mockProvider{}, adapters.NewRegistry(), 0.2, 0, nil)

	req := subpoenaRequest(model.EntityTemei)
	req.DocumentType = "Contestație"

	_, err := x.ExtractEntities(context.Background(), req)
	if !errors.Is(err, adapters.ErrUnsupportedDocumentType) {
		t.Errorf("Expected ErrUnsupportedDocumentType, got %v", err)
	}
}

func TestEntityExtractor_RetriesUnavailable(t *testing.T) {
	slept := noSleep(t)
	provider := &mockProvider{replies: []mockReply{
		{err: ErrUnavailable},
		{err: ErrUnavailable},
		{text: "<p>art. 31</p>"},
	}}
	x := NewEntityExtractor(provider, adapters.NewRegistry(), 0.2, 2, nil)

	spans, err := x.ExtractEntities(context.Background(), subpoenaRequest(model.EntityTemei))
	if err != nil {
		t.Fatalf("ExtractEntities failed: %v", err)
	}
	if len(spans) != 1 {
		t.Errorf("Expected 1 span, got %q", spans)
	}
	if len(provider.requests) != 3 {
		t.Errorf("Expected 3 attempts, got %d", len(provider.requests))
	}
	if len(*slept) != 2 || (*slept)[0] != time.Second || (*slept)[1] != 2*time.Second {
		t.Errorf("Expected exponential backoff, got %v", *slept)
	}
}

func TestEntityExtractor_RetriesExhausted(t *testing.T) {
	noSleep(t)
	provider := &mockProvider{replies: []mockReply{{err: ErrUnavailable}}}
	x := NewEntityExtractor(provider, adapters.NewRegistry(), 0.2, 1, nil)

	_, err := x.ExtractEntities(context.Background(), subpoenaRequest(model.EntityTemei))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
	if len(provider.requests) != 2 {
		t.Errorf("Expected 2 attempts, got %d", len(provider.requests))
	}
}

func TestEntityExtractor_TimeoutNotRetried(t *testing.T) {
	noSleep(t)
	provider := &mockProvider{replies: []mockReply{{err: ErrTimeout}}}
	x := NewEntityExtractor(provider, adapters.NewRegistry(), 0.2, 3, nil)

	_, err := x.ExtractEntities(context.Background(), subpoenaRequest(model.EntityTemei))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
	if len(provider.requests) != 1 {
		t.Errorf("Expected 1 attempt, got %d", len(provider.requests))
	}
}
