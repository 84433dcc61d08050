package validate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/juridoc/internal/extract/adapters"
	"github.com/ppiankov/juridoc/internal/model"
)

// maxProblems caps how many problems one ValidationError lists
const maxProblems = 20

// ValidationError lists every structural problem found in a document
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid document: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid document: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validator checks documents before a task is created for them
type Validator struct {
	registry *adapters.Registry
}

// NewValidator creates a validator. A nil registry skips the document type check.
func NewValidator(registry *adapters.Registry) *Validator {
	return &Validator{registry: registry}
}

type problems struct {
	list    []string
	dropped int
}

func (p *problems) add(format string, args ...any) {
	if len(p.list) >= maxProblems {
		p.dropped++
		return
	}
	p.list = append(p.list, fmt.Sprintf(format, args...))
}

func (p *problems) err() error {
	if len(p.list) == 0 {
		return nil
	}
	if p.dropped > 0 {
		p.list = append(p.list, fmt.Sprintf("and %d more", p.dropped))
	}
	return &ValidationError{Problems: p.list}
}

// Validate checks the page/paragraph/word nesting, word ids, text content,
// document type and requested entity types. It returns the resolved entity
// types (all of them when none were requested).
func (v *Validator) Validate(doc *model.Document, requested []string) ([]model.EntityType, error) {
	var p problems

	if doc == nil {
		p.add("document is required")
		return nil, p.err()
	}

	types, err := model.ParseEntityTypes(requested)
	if err != nil {
		p.add("extraction_type: %v", err)
	}

	if v.registry != nil {
		if _, err := v.registry.FindAdapter(doc.DocumentTypeName); err != nil {
			p.add("documentTypeName: %v", err)
		}
	}

	if len(doc.Pages) == 0 {
		p.add("pages: at least one page is required")
		return nil, p.err()
	}

	seen := make(map[string]string)
	for pi, page := range doc.Pages {
		if page.Width < 0 || page.Height < 0 {
			p.add("pages[%d]: negative dimensions", pi)
		}
		for gi, para := range page.Paragraphs {
			for wi, w := range para.Words {
				at := fmt.Sprintf("pages[%d].paragraphs[%d].words[%d]", pi, gi, wi)
				if w.ID == "" {
					p.add("%s: id is required", at)
				} else if first, dup := seen[w.ID]; dup {
					p.add("%s: duplicate word id %q (first at %s)", at, w.ID, first)
				} else {
					seen[w.ID] = at
				}
				if w.Width < 0 || w.Height < 0 {
					p.add("%s: negative dimensions", at)
				}
			}
		}
	}

	if doc.Flatten() == "" {
		p.add("content: document has no words with text")
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	return types, nil
}
