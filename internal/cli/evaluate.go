package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/juridoc/internal/model"
	"github.com/ppiankov/juridoc/internal/pipeline"
	"github.com/ppiankov/juridoc/internal/score"
)

var (
	evalOutput string
	evalTypes  []string
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <predicted.json> <gold.json> [<predicted.json> <gold.json> ...]",
	Short: "Compare predicted annotations with gold annotations",
	Long: `Evaluate compares annotated documents with manually annotated gold
documents word by word and reports, per entity type, precision, recall,
F1 and extra annotations (words flagged only in the prediction).

Only words with non-blank text are compared. Gold documents without any
annotation for the evaluated types are skipped. With several pairs the
per-type averages are reported as well.

Example:
  juridoc evaluate cerere.annotated.json cerere.gold.json
  juridoc evaluate a.annotated.json a.gold.json b.annotated.json b.gold.json --json report.json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected predicted/gold pairs, got %d paths", len(args))
		}
		return nil
	},
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalOutput, "json", "", "also write the evaluation as JSON to this path")
	evaluateCmd.Flags().StringSliceVar(&evalTypes, "types", nil, "entity types to evaluate (default: all)")
}

type evaluationReport struct {
	Documents []*model.Evaluation                         `json:"documents"`
	Aggregate map[model.EntityType]model.AggregateMetrics `json:"aggregate,omitempty"`
	Skipped   []string                                    `json:"skipped,omitempty"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	types, err := model.ParseEntityTypes(evalTypes)
	if err != nil {
		return err
	}

	scorer := score.NewScorer()
	report := evaluationReport{}
	out := cmd.OutOrStdout()

	for i := 0; i < len(args); i += 2 {
		predicted, err := pipeline.LoadDocument(args[i])
		if err != nil {
			return err
		}
		gold, err := pipeline.LoadDocument(args[i+1])
		if err != nil {
			return err
		}

		if !score.HasAnnotations(gold, types) {
			report.Skipped = append(report.Skipped, args[i+1])
			fmt.Fprintf(os.Stderr, "Skipping %s: no gold annotations for %v\n", args[i+1], types)
			continue
		}

		eval, err := scorer.Evaluate(predicted, gold, types)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", args[i], err)
		}
		for _, warning := range eval.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ %s: %s\n", args[i], warning)
		}

		report.Documents = append(report.Documents, eval)
		fmt.Fprintf(out, "\n%s vs %s\n", args[i], args[i+1])
		printMetrics(out, eval, types)
	}

	if len(report.Documents) == 0 {
		return fmt.Errorf("no gold documents with annotations for %v", types)
	}

	if len(report.Documents) > 1 {
		report.Aggregate = scorer.Aggregate(report.Documents)
		fmt.Fprintf(out, "\nAverages over %d documents\n", len(report.Documents))
		printAggregate(out, report.Aggregate, types)
	}

	if evalOutput != "" {
		if err := pipeline.WriteJSON(evalOutput, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote evaluation: %s\n", evalOutput)
	}
	return nil
}

func printMetrics(w io.Writer, eval *model.Evaluation, types []model.EntityType) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tPRECISION\tRECALL\tF1\tGOLD\tPREDICTED\tEXTRA\tEXTRA %")
	for _, e := range types {
		m := eval.Metrics[e]
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%d\t%d\t%d\t%.1f%%\n",
			e, m.Precision, m.Recall, m.F1, m.GoldPositive, m.PredPositive, m.Extra, m.ExtraPercentage)
	}
	tw.Flush()
}

func printAggregate(w io.Writer, agg map[model.EntityType]model.AggregateMetrics, types []model.EntityType) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tDOCS\tAVG PRECISION\tAVG RECALL\tAVG F1\tEXTRA\tAVG EXTRA %")
	for _, e := range types {
		a, ok := agg[e]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\t%.3f\t%d\t%.1f%%\n",
			e, a.Documents, a.AvgPrecision, a.AvgRecall, a.AvgF1, a.TotalExtra, a.AvgExtraPercent)
	}
	tw.Flush()
}
