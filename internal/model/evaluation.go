package model

// EntityMetrics is the word-level comparison of one entity type between a
// predicted document and its gold annotation
type EntityMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`

	TotalWords   int `json:"total_words"` // non-blank words compared
	GoldPositive int `json:"gt_positive_words"`
	PredPositive int `json:"pred_positive_words"`
	TruePositive int `json:"true_positive"`
	Extra        int `json:"extra_annotations_count"` // flagged in prediction only
	Missed       int `json:"missed_count"`            // flagged in gold only

	RecallPercentage float64 `json:"recall_percentage"`
	ExtraPercentage  float64 `json:"extra_annotations_percentage"` // extra / total words

	GoldWords      string `json:"ground_truth_words,omitempty"`
	PredictedWords string `json:"predicted_words,omitempty"`
}

// Evaluation holds per-entity metrics for one document pair
type Evaluation struct {
	DocumentID string                       `json:"document_id,omitempty"`
	Metrics    map[EntityType]EntityMetrics `json:"metrics"`
	Warnings   []string                     `json:"warnings,omitempty"`
}

// AggregateMetrics summarizes one entity type across many evaluations.
// Ratios are averaged per document, counts are summed.
type AggregateMetrics struct {
	AvgPrecision      float64 `json:"avg_precision"`
	AvgRecall         float64 `json:"avg_recall"`
	AvgF1             float64 `json:"avg_f1_score"`
	AvgRecallPercent  float64 `json:"avg_recall_percentage"`
	AvgExtraPercent   float64 `json:"avg_extra_percentage"`
	TotalWords        int     `json:"total_words"`
	TotalGoldPositive int     `json:"total_gt_positive"`
	TotalPredPositive int     `json:"total_pred_positive"`
	TotalExtra        int     `json:"total_extra_annotations"`
	Documents         int     `json:"num_documents"`
}
