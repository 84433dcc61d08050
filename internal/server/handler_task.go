package server

import (
	"errors"
	"net/http"

	"github.com/ppiankov/juridoc/internal/model"
	"github.com/ppiankov/juridoc/internal/task"
)

type annotatedResponse struct {
	TaskID   string              `json:"task_id"`
	Status   model.Status        `json:"status"`
	Progress string              `json:"progress,omitempty"`
	Document *model.Document     `json:"document,omitempty"`
	Failures []model.TypeFailure `json:"failures,omitempty"`
	Error    string              `json:"error,omitempty"`
}

type summarizedResponse struct {
	TaskID   string         `json:"task_id"`
	Status   model.Status   `json:"status"`
	Progress string         `json:"progress,omitempty"`
	Summary  *model.Summary `json:"summary,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("task_id")

	t, err := h.tasks.Status(id)

	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJson(w, http.StatusOK, t)
}

func (h *Handler) handleAnnotated(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("task_id")

	t, err := h.tasks.Result(id, model.KindAnnotation)

	if errors.Is(err, task.ErrUnknownTask) || errors.Is(err, task.ErrKindMismatch) {
		writeError(w, http.StatusNotFound, err)
		return
	}

	resp := annotatedResponse{
		TaskID:   t.ID,
		Status:   t.Status,
		Progress: t.Progress,
		Failures: t.Failures,
	}

	if err != nil {
		resp.Error = errorText(t, err)
		writeJson(w, statusFor(err), resp)
		return
	}

	resp.Document = t.Result
	writeJson(w, http.StatusOK, resp)
}

func (h *Handler) handleSummarized(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("task_id")

	t, err := h.tasks.Result(id, model.KindSummarization)

	if errors.Is(err, task.ErrUnknownTask) || errors.Is(err, task.ErrKindMismatch) {
		writeError(w, http.StatusNotFound, err)
		return
	}

	resp := summarizedResponse{
		TaskID:   t.ID,
		Status:   t.Status,
		Progress: t.Progress,
	}

	if err != nil {
		resp.Error = errorText(t, err)
		writeJson(w, statusFor(err), resp)
		return
	}

	resp.Summary = t.Summary
	writeJson(w, http.StatusOK, resp)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("task_id")

	t, err := h.tasks.Cancel(id)

	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJson(w, http.StatusOK, submitResponse{
		TaskID:  t.ID,
		Status:  t.Status,
		Message: t.Progress,
	})
}

// errorText is empty while the task is still running
func errorText(t model.Task, err error) string {
	switch {
	case errors.Is(err, task.ErrNotReady):
		return ""
	case t.Error != "":
		return t.Error
	default:
		return err.Error()
	}
}
