package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/juridoc/internal/pipeline"
)

var (
	summaryOutput  string
	summaryRewrite bool
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize <annotated.json>",
	Short: "Summarize an annotated document",
	Long: `Summarize joins the flagged words of an annotated document into one
text per entity type. Separate runs of flagged words are joined with the
configured separator (a newline by default).

With --rewrite every field is additionally rewritten by the summary
adapters of the document type.

Example:
  juridoc summarize cerere.annotated.json
  juridoc summarize cerere.annotated.json --rewrite --output summary.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&summaryOutput, "output", "", "write the summary to this file instead of stdout")
	summarizeCmd.Flags().BoolVar(&summaryRewrite, "rewrite", false, "rewrite each field with the summary model")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	doc, err := pipeline.LoadDocument(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if summaryRewrite {
		cfg.Summary.Rewrite = true
	}

	p, err := pipeline.New(cfg, newLogger(os.Stderr))
	if err != nil {
		return err
	}

	s, err := p.Summarize(cmd.Context(), doc, doc.ExtractionType)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	for _, warning := range s.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", warning)
	}

	if summaryOutput != "" {
		if err := pipeline.WriteJSON(summaryOutput, s); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote summary: %s\n", summaryOutput)
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}
