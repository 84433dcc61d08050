// Test program that runs every entity type of a sample subpoena against a
// live model endpoint and prints the spans and how they align.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/juridoc/internal/align"
	"github.com/ppiankov/juridoc/internal/extract"
	"github.com/ppiankov/juridoc/internal/extract/adapters"
	"github.com/ppiankov/juridoc/internal/llm"
	"github.com/ppiankov/juridoc/internal/model"
)

var sampleParagraphs = []string{
	"Subsemnatul Popescu Ion, domiciliat în București, str. Florilor nr. 3,",
	"în contradictoriu cu IPJ Ilfov, cu sediul în București,",
	"formulez plângere contravențională împotriva procesului-verbal seria AB nr. 123456",
	"și solicit anularea procesului-verbal și exonerarea de plata amenzii.",
	"În drept, îmi întemeiez cererea pe dispozițiile art. 31 din O.G. nr. 2/2001.",
	"În dovedire, solicit proba cu înscrisuri și proba testimonială.",
}

func sampleDocument() *model.Document {
	doc := &model.Document{
		ID:               "sample",
		DocumentTypeName: adapters.SubpoenaTypeName,
		Pages:            []model.Page{{PageNumber: 1}},
	}
	n := 0
	for pi, text := range sampleParagraphs {
		para := model.Paragraph{ID: fmt.Sprintf("p%d", pi)}
		for _, word := range strings.Fields(text) {
			para.Words = append(para.Words, model.Word{ID: fmt.Sprintf("w%d", n), Text: word})
			n++
		}
		doc.Pages[0].Paragraphs = append(doc.Pages[0].Paragraphs, para)
	}
	return doc
}

func main() {
	fmt.Println("=== Entity Extraction Test ===")

	cfg := model.DefaultConfig().LLM
	if endpoint := os.Getenv("VLLM_ENDPOINT"); endpoint != "" {
		cfg.BaseURL = endpoint
	}
	fmt.Printf("Endpoint: %s\n\n", cfg.BaseURL)

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg))
	if err != nil {
		fmt.Printf("Provider error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if !provider.IsAvailable(ctx) {
		fmt.Println("⚠️  Model endpoint is not reachable")
		os.Exit(1)
	}

	extractor := llm.NewEntityExtractor(provider, adapters.NewRegistry(), cfg.Temperature, 0, nil)
	doc := sampleDocument()
	aligner := align.New()

	for _, e := range model.AllEntityTypes {
		fmt.Printf("%s\n", e)
		fmt.Println(strings.Repeat("-", 60))

		start := time.Now()
		spans, err := extractor.ExtractEntities(ctx, extract.Request{
			DocumentType: doc.DocumentTypeName,
			Entity:       e,
			Text:         doc.Flatten(),
			Paragraphs:   doc.ParagraphTexts(),
		})
		if err != nil {
			fmt.Printf("  Extraction error: %v\n\n", err)
			continue
		}

		for _, span := range spans {
			fmt.Printf("  span: %s\n", span)
		}

		result, err := aligner.Align(doc.Words(), e, spans)
		if err != nil {
			fmt.Printf("  Alignment error: %v\n\n", err)
			continue
		}
		fmt.Printf("  ✓ %d accepted, %d missed, %d words flagged (%s)\n\n",
			result.Accepted, result.Missed, len(result.Toggled), time.Since(start).Round(time.Millisecond))
	}

	fmt.Println("=== Test Complete ===")
}
