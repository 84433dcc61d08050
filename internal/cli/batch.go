package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/juridoc/internal/pipeline"
	"github.com/ppiankov/juridoc/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	listFile     string
	entityTypes  []string
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate [document.json ...]",
	Short: "Annotate document files in parallel",
	Long: `Annotate processes document files concurrently:
- Read documents given as arguments and/or listed in a file (one path per line)
- Extract every requested entity type with the configured model endpoint
- Write <name>.annotated.json next to each input, or into --output-dir

Entity types come from --types, else from each document's extraction_type,
else all six.

Example:
  juridoc annotate cerere.json
  juridoc annotate --list docs.txt --concurrency 4 --output-dir ./annotated
  juridoc annotate cerere.json --types Reclamant,Parat`,
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of documents processed at once")
	annotateCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (default: next to each input)")
	annotateCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	annotateCmd.Flags().StringVar(&listFile, "list", "", "file listing document paths, one per line")
	annotateCmd.Flags().StringSliceVar(&entityTypes, "types", nil, "entity types to extract (default: per document)")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	paths := append([]string(nil), args...)
	if listFile != "" {
		listed, err := worker.ReadPathsFromFile(listFile)
		if err != nil {
			return fmt.Errorf("read list: %w", err)
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documents given (pass paths or --list)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Juridoc Batch Annotation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Documents:    %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Endpoint:     %s\n", cfg.LLM.BaseURL)
	if outputDir != "" {
		fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	}
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.New(cfg, newLogger(os.Stderr),
		pipeline.WithOutputDir(outputDir),
		pipeline.WithEntityTypes(entityTypes))
	if err != nil {
		return err
	}

	results := worker.NewBatchProcessor(p, concurrency).ProcessFiles(ctx, paths)

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		successCount++

		var counts []string
		for e, n := range result.Toggled {
			counts = append(counts, fmt.Sprintf("%s=%d", e, n))
		}
		slices.Sort(counts)
		line := fmt.Sprintf("✓ %s -> %s (%s)", result.Path, result.OutputPath, strings.Join(counts, " "))
		if len(result.Failures) > 0 {
			line += fmt.Sprintf(", %d entity types failed", len(result.Failures))
		}
		fmt.Fprintln(os.Stderr, line)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d documents failed", failureCount, len(results))
	}
	return nil
}
