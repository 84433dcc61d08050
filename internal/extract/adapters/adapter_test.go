package adapters

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/juridoc/internal/model"
)

func TestRegistry_FindAdapter(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		typeName string
		expected string
	}{
		{"Cerere de chemare în judecată", "subpoena"},
		{"cerere de chemare in judecata", ""}, // missing diacritics is a different word
		{"CERERE DE CHEMARE ÎN JUDECATĂ", "subpoena"},
		{"Întâmpinare", "counterclaim"},
		{"  întâmpinare ", "counterclaim"},
		{"Contestație", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			adapter, err := registry.FindAdapter(tt.typeName)
			if tt.expected == "" {
				if !errors.Is(err, ErrUnsupportedDocumentType) {
					t.Errorf("expected ErrUnsupportedDocumentType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindAdapter failed: %v", err)
			}
			if adapter.Name() != tt.expected {
				t.Errorf("expected adapter %s, got %s", tt.expected, adapter.Name())
			}
		})
	}
}

func TestRegistry_SupportedTypes(t *testing.T) {
	types := NewRegistry().SupportedTypes()
	if len(types) != 2 {
		t.Fatalf("expected 2 supported types, got %d", len(types))
	}
	if types[0] != SubpoenaTypeName || types[1] != CounterclaimTypeName {
		t.Errorf("unexpected supported types: %v", types)
	}
}

func TestAdapters_CoverEveryEntityType(t *testing.T) {
	for _, adapter := range []Adapter{NewSubpoenaAdapter(), NewCounterclaimAdapter()} {
		for _, e := range model.AllEntityTypes {
			p, err := adapter.Annotation(e)
			if err != nil {
				t.Errorf("%s: annotation prompt for %s: %v", adapter.Name(), e, err)
				continue
			}
			if p.Model == "" || p.System == "" || p.Request == "" {
				t.Errorf("%s: incomplete annotation prompt for %s", adapter.Name(), e)
			}
			if p.MaxTokens <= 0 {
				t.Errorf("%s: missing max tokens for %s", adapter.Name(), e)
			}

			s, err := adapter.Summary(e)
			if err != nil {
				t.Errorf("%s: summary prompt for %s: %v", adapter.Name(), e, err)
				continue
			}
			if s.Model == "" || s.MaxTokens != SummaryMaxTokens {
				t.Errorf("%s: incomplete summary prompt for %s", adapter.Name(), e)
			}
		}
	}
}

func TestAdapter_AnnotationModelsAndLimits(t *testing.T) {
	p, _ := NewSubpoenaAdapter().Annotation(model.EntitySelected)
	if p.Model != "subpoema-isselect" {
		t.Errorf("expected subpoema-isselect, got %s", p.Model)
	}
	if p.MaxTokens != 2300 {
		t.Errorf("expected 2300 max tokens, got %d", p.MaxTokens)
	}

	p, _ = NewCounterclaimAdapter().Annotation(model.EntityReclamant)
	if p.Model != "counterclaim-isreclamant" {
		t.Errorf("expected counterclaim-isreclamant, got %s", p.Model)
	}
	if p.MaxTokens != 150 {
		t.Errorf("expected 150 max tokens, got %d", p.MaxTokens)
	}
}

func TestAdapter_UnknownEntityType(t *testing.T) {
	_, err := NewSubpoenaAdapter().Annotation(model.EntityType("Exceptie"))
	if !errors.Is(err, model.ErrUnknownEntityType) {
		t.Errorf("expected ErrUnknownEntityType, got %v", err)
	}
}

func TestPrompt_Render(t *testing.T) {
	p := Prompt{Request: "Cine a scris cererea: \"{isReclamant}\". {isParat}"}

	got := p.Render("<p> text </p>", map[model.EntityType]string{
		model.EntityReclamant: "Ion Popescu",
	})

	expected := "## Document Text\n\n<p> text </p>\n\n## Request\nCine a scris cererea: \"Ion Popescu\". {isParat}"
	if got != expected {
		t.Errorf("unexpected prompt:\n%s", got)
	}
}

func TestSubpoenaAdapter_PostProcessSummary(t *testing.T) {
	a := NewSubpoenaAdapter()

	tests := []struct {
		name     string
		entity   model.EntityType
		input    string
		expected string
	}{
		{
			name:     "preamble dropped",
			entity:   model.EntityCerere,
			input:    "Textul corectat:\nAu solicitat anularea procesului-verbal.",
			expected: "au solicitat anularea procesului-verbal.",
		},
		{
			name:     "already well formed",
			entity:   model.EntityCerere,
			input:    "  a solicitat admiterea plângerii. ",
			expected: "a solicitat admiterea plângerii.",
		},
		{
			name:     "no solicitation",
			entity:   model.EntityCerere,
			input:    "Anularea amenzii.",
			expected: "Anularea amenzii.",
		},
		{
			name:     "other entity untouched",
			entity:   model.EntityTemei,
			input:    "Textul: A solicitat x",
			expected: "Textul: A solicitat x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.PostProcessSummary(tt.entity, tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCounterclaimAdapter_PostProcessSummary(t *testing.T) {
	got := NewCounterclaimAdapter().PostProcessSummary(model.EntityCerere, " Textul: A solicitat x ")
	if got != "Textul: A solicitat x" {
		t.Errorf("counterclaim should only trim, got %q", got)
	}
}

func TestPrompts_MarkParagraphs(t *testing.T) {
	p, _ := NewSubpoenaAdapter().Annotation(model.EntityTemei)
	if !strings.Contains(p.System, "<p>") {
		t.Error("annotation system prompt should describe paragraph tags")
	}
}
