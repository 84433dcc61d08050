package model

import "time"

// Status is the lifecycle state of a task
type Status string

// Stable values, shared by both task kinds.
const (
	StatusPending           Status = "pending"
	StatusProcessing        Status = "processing"
	StatusExtractingContent Status = "extracting_content" // flattening / preprocessing
	StatusAnnotating        Status = "annotating"         // extraction orchestrator running
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusCancelled         Status = "cancelled" // only reachable from pending
)

// Terminal reports whether no further transition is possible from s
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// TaskKind distinguishes annotation work from summarization work
type TaskKind string

const (
	KindAnnotation    TaskKind = "annotation"
	KindSummarization TaskKind = "summarization"
)

// TypeFailure records that extraction for one entity type failed
type TypeFailure struct {
	EntityType EntityType `json:"entity_type"`
	Error      string     `json:"error"`
}

// Task is an immutable snapshot of one unit of asynchronous work.
// Result is set only when Status is completed (annotation kind),
// Summary likewise for summarization, Error only when Status is failed.
type Task struct {
	ID         string               `json:"task_id"`
	Kind       TaskKind             `json:"kind"`
	Status     Status               `json:"status"`
	Progress   string               `json:"progress,omitempty"`
	Document   *Document            `json:"-"`
	Types      []EntityType         `json:"extraction_type"`
	Result     *Document            `json:"-"`
	Summary    *Summary             `json:"-"`
	Failures   []TypeFailure        `json:"failures,omitempty"`
	Error      string               `json:"error,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
	Timestamps map[Status]time.Time `json:"timestamps"`
}

// PartiallyFailed reports whether a completed task carries per-type failures
func (t *Task) PartiallyFailed() bool {
	return t.Status == StatusCompleted && len(t.Failures) > 0
}
