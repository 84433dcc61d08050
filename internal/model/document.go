package model

import (
	"fmt"
	"iter"
	"strings"
)

// Word is the smallest annotated unit of a scanned document
type Word struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Left   int    `json:"left"`   // Pixel coordinates, page-relative
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	IsSelected  bool `json:"isSelected"`
	IsProba     bool `json:"isProba"`
	IsExceptie  bool `json:"isExceptie"` // Legacy flag, never set by extraction
	IsTemei     bool `json:"isTemei"`
	IsCerere    bool `json:"isCerere"`
	IsReclamant bool `json:"isReclamant"`
	IsParat     bool `json:"isParat"`
}

// Paragraph is an ordered run of words in reading order
type Paragraph struct {
	ID    string `json:"id"`
	Words []Word `json:"words"`
}

// Page holds the paragraphs of one scanned page
type Page struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	PageNumber int         `json:"pageNumber"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Document is a scanned court document plus its case metadata.
// Content is the flat text view; Pages is the structured view that gets annotated.
type Document struct {
	ID                  string   `json:"id"`
	UserID              string   `json:"userId"`
	Email               string   `json:"email"`
	CaseNumber          string   `json:"caseNumber"`
	EntityID            int      `json:"entityId"`
	DocumentTypeID      int      `json:"documentTypeId"`
	DocumentTypeName    string   `json:"documentTypeName"`
	AttachmentID        int      `json:"attachmentId"`
	ExtractedPages      []int    `json:"extractedPages"`
	ExtractedContent    string   `json:"extractedContent"`
	Content             string   `json:"content"`
	Pages               []Page   `json:"pages"`
	IsGold              bool     `json:"isGold"`
	IsManuallyAdnotated bool     `json:"isManuallyAdnotated"`
	LastSaved           string   `json:"lastSaved"`
	ExtractionType      []string `json:"extraction_type,omitempty"` // Requested entity types (empty = all)
}

// Flag returns the value of the flag backing entity type e
func (w *Word) Flag(e EntityType) (bool, error) {
	p, err := w.flagPtr(e)
	if err != nil {
		return false, err
	}
	return *p, nil
}

// SetFlag sets the flag backing entity type e. Other flags are never touched.
func (w *Word) SetFlag(e EntityType, value bool) error {
	p, err := w.flagPtr(e)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func (w *Word) flagPtr(e EntityType) (*bool, error) {
	switch e {
	case EntityTemei:
		return &w.IsTemei, nil
	case EntityProba:
		return &w.IsProba, nil
	case EntitySelected:
		return &w.IsSelected, nil
	case EntityCerere:
		return &w.IsCerere, nil
	case EntityReclamant:
		return &w.IsReclamant, nil
	case EntityParat:
		return &w.IsParat, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, string(e))
	}
}

// Words returns a restartable sequence over all words in reading order,
// each paired with its absolute index. Words are yielded by pointer so the
// caller can annotate them in place.
func (d *Document) Words() iter.Seq2[int, *Word] {
	return func(yield func(int, *Word) bool) {
		pos := 0
		for pi := range d.Pages {
			page := &d.Pages[pi]
			for gi := range page.Paragraphs {
				para := &page.Paragraphs[gi]
				for wi := range para.Words {
					if !yield(pos, &para.Words[wi]) {
						return
					}
					pos++
				}
			}
		}
	}
}

// WordSlice materializes the word stream into a slice indexed by absolute
// position, for windowed index arithmetic.
func (d *Document) WordSlice() []*Word {
	words := make([]*Word, 0, d.WordCount())
	for _, w := range d.Words() {
		words = append(words, w)
	}
	return words
}

// WordCount returns the total number of words across all pages
func (d *Document) WordCount() int {
	count := 0
	for _, page := range d.Pages {
		for _, para := range page.Paragraphs {
			count += len(para.Words)
		}
	}
	return count
}

// Flatten concatenates word texts in page/paragraph/word order separated by
// single spaces. Blank words are skipped, so the result is stable for a
// given document.
func (d *Document) Flatten() string {
	var buf strings.Builder
	for _, w := range d.Words() {
		text := strings.Join(strings.Fields(w.Text), " ")
		if text == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(text)
	}
	return buf.String()
}

// ParagraphTexts returns the text of every non-empty paragraph in reading order
func (d *Document) ParagraphTexts() []string {
	var paragraphs []string
	for _, page := range d.Pages {
		for _, para := range page.Paragraphs {
			var words []string
			for _, w := range para.Words {
				if text := strings.Join(strings.Fields(w.Text), " "); text != "" {
					words = append(words, text)
				}
			}
			if len(words) > 0 {
				paragraphs = append(paragraphs, strings.Join(words, " "))
			}
		}
	}
	return paragraphs
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	clone := *d
	clone.ExtractedPages = cloneSlice(d.ExtractedPages)
	clone.ExtractionType = cloneSlice(d.ExtractionType)
	if d.Pages != nil {
		clone.Pages = make([]Page, len(d.Pages))
		for pi, page := range d.Pages {
			clone.Pages[pi] = page
			if page.Paragraphs != nil {
				clone.Pages[pi].Paragraphs = make([]Paragraph, len(page.Paragraphs))
				for gi, para := range page.Paragraphs {
					clone.Pages[pi].Paragraphs[gi] = Paragraph{
						ID:    para.ID,
						Words: cloneSlice(para.Words),
					}
				}
			}
		}
	}
	return &clone
}

// cloneSlice copies s, keeping nil and empty slices distinct for JSON
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// CountFlagged returns how many words carry the flag for entity type e
func (d *Document) CountFlagged(e EntityType) int {
	count := 0
	for _, w := range d.Words() {
		if on, _ := w.Flag(e); on {
			count++
		}
	}
	return count
}
