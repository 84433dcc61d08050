package task

import "errors"

var (
	// ErrUnknownTask is returned for ids that were never issued or have expired
	ErrUnknownTask = errors.New("task not found")

	// ErrNotReady is returned when a result is requested before the task finished
	ErrNotReady = errors.New("task not finished")

	// ErrCapacityExceeded is returned when the task queue is saturated
	ErrCapacityExceeded = errors.New("task queue at capacity")

	// ErrNotCancellable is returned when cancelling a task a worker already claimed
	ErrNotCancellable = errors.New("task can only be cancelled while pending")

	// ErrTotalExtractionFailure fails a task whose extraction could not produce a usable result
	ErrTotalExtractionFailure = errors.New("extraction failed")

	// ErrKindMismatch is returned when fetching an annotation result of a summarization task, or vice versa
	ErrKindMismatch = errors.New("task kind mismatch")

	// ErrTaskFailed wraps the stored error of a failed task
	ErrTaskFailed = errors.New("task failed")

	// ErrTaskCancelled is returned when fetching the result of a cancelled task
	ErrTaskCancelled = errors.New("task was cancelled")

	// ErrInvalidTransition is returned for backward or post-terminal status changes
	ErrInvalidTransition = errors.New("invalid status transition")
)
