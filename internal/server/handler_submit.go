package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ppiankov/juridoc/internal/model"
	"github.com/ppiankov/juridoc/internal/task"
)

type submitResponse struct {
	TaskID  string       `json:"task_id"`
	Status  model.Status `json:"status"`
	Message string       `json:"message"`
}

func (h *Handler) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, model.KindAnnotation, "Document annotation task created")
}

func (h *Handler) handleSummarize(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, model.KindSummarization, "Document summarization task created")
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, kind model.TaskKind, message string) {
	doc, err := h.readDocument(w, r)

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.tasks.Submit(r.Context(), kind, doc, doc.ExtractionType)

	if err != nil {
		code := statusFor(err)

		if errors.Is(err, task.ErrCapacityExceeded) {
			w.Header().Set("Retry-After", retryAfterSeconds)
		}

		h.logger.Warn("submission rejected", "kind", kind, "status", code, "error", err)
		writeError(w, code, err)
		return
	}

	writeJson(w, http.StatusAccepted, submitResponse{
		TaskID:  id,
		Status:  model.StatusPending,
		Message: message,
	})
}

func (h *Handler) readDocument(w http.ResponseWriter, r *http.Request) (*model.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var doc model.Document

	if err := decodeJson(r, &doc); err != nil {
		return nil, fmt.Errorf("invalid document body: %w", err)
	}

	return &doc, nil
}
