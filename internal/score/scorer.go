package score

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/juridoc/internal/model"
)

// ErrNoDocument is returned when either side of a comparison is missing
var ErrNoDocument = errors.New("predicted and gold documents are required")

// Scorer compares predicted annotations against gold annotations word by word
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Evaluate computes per-entity metrics for a predicted document against its
// gold annotation. Only words with non-blank text take part, compared by
// position. When the two documents disagree on word count the longer side
// is truncated and a warning is recorded.
func (s *Scorer) Evaluate(predicted, gold *model.Document, types []model.EntityType) (*model.Evaluation, error) {
	if predicted == nil || gold == nil {
		return nil, ErrNoDocument
	}
	if len(types) == 0 {
		types = model.AllEntityTypes
	}

	predWords := nonBlankWords(predicted)
	goldWords := nonBlankWords(gold)

	eval := &model.Evaluation{
		DocumentID: gold.ID,
		Metrics:    make(map[model.EntityType]model.EntityMetrics, len(types)),
	}
	if len(predWords) != len(goldWords) {
		eval.Warnings = append(eval.Warnings,
			fmt.Sprintf("word count mismatch: predicted %d, gold %d", len(predWords), len(goldWords)))
		n := min(len(predWords), len(goldWords))
		predWords, goldWords = predWords[:n], goldWords[:n]
	}

	for _, e := range types {
		metrics, err := s.compare(predWords, goldWords, e)
		if err != nil {
			return nil, err
		}
		eval.Metrics[e] = metrics
	}
	return eval, nil
}

// compare counts agreement for one entity type over aligned word lists
func (s *Scorer) compare(predWords, goldWords []*model.Word, e model.EntityType) (model.EntityMetrics, error) {
	var m model.EntityMetrics
	var goldText, predText []string

	for i := range goldWords {
		g, err := goldWords[i].Flag(e)
		if err != nil {
			return model.EntityMetrics{}, err
		}
		p, _ := predWords[i].Flag(e)

		if g {
			m.GoldPositive++
			goldText = append(goldText, goldWords[i].Text)
		}
		if p {
			m.PredPositive++
			predText = append(predText, predWords[i].Text)
		}
		switch {
		case g && p:
			m.TruePositive++
		case p:
			m.Extra++
		case g:
			m.Missed++
		}
	}

	m.TotalWords = len(goldWords)
	m.Precision = ratio(m.TruePositive, m.TruePositive+m.Extra)
	m.Recall = ratio(m.TruePositive, m.TruePositive+m.Missed)
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.RecallPercentage = ratio(m.TruePositive, m.GoldPositive) * 100
	m.ExtraPercentage = ratio(m.Extra, m.TotalWords) * 100
	m.GoldWords = strings.Join(goldText, " ")
	m.PredictedWords = strings.Join(predText, " ")

	return m, nil
}

// Aggregate averages ratios and sums counts per entity type across evaluations
func (s *Scorer) Aggregate(evals []*model.Evaluation) map[model.EntityType]model.AggregateMetrics {
	out := make(map[model.EntityType]model.AggregateMetrics)

	for _, e := range model.AllEntityTypes {
		var agg model.AggregateMetrics
		for _, eval := range evals {
			m, ok := eval.Metrics[e]
			if !ok {
				continue
			}
			agg.Documents++
			agg.AvgPrecision += m.Precision
			agg.AvgRecall += m.Recall
			agg.AvgF1 += m.F1
			agg.AvgRecallPercent += m.RecallPercentage
			agg.AvgExtraPercent += m.ExtraPercentage
			agg.TotalWords += m.TotalWords
			agg.TotalGoldPositive += m.GoldPositive
			agg.TotalPredPositive += m.PredPositive
			agg.TotalExtra += m.Extra
		}
		if agg.Documents == 0 {
			continue
		}
		n := float64(agg.Documents)
		agg.AvgPrecision /= n
		agg.AvgRecall /= n
		agg.AvgF1 /= n
		agg.AvgRecallPercent /= n
		agg.AvgExtraPercent /= n
		out[e] = agg
	}
	return out
}

// HasAnnotations reports whether any non-blank word of doc carries a flag
// for one of types. Gold documents without annotations are skipped by
// batch evaluation.
func HasAnnotations(doc *model.Document, types []model.EntityType) bool {
	for _, w := range nonBlankWords(doc) {
		for _, e := range types {
			if on, _ := w.Flag(e); on {
				return true
			}
		}
	}
	return false
}

func nonBlankWords(doc *model.Document) []*model.Word {
	var words []*model.Word
	for _, w := range doc.Words() {
		if strings.TrimSpace(w.Text) != "" {
			words = append(words, w)
		}
	}
	return words
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
