package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ppiankov/juridoc/internal/model"
	"github.com/ppiankov/juridoc/internal/task"
	"github.com/ppiankov/juridoc/internal/validate"
)

// maxBodyBytes bounds one submitted document
const maxBodyBytes = 64 << 20

// retryAfterSeconds is advertised when the task queue is saturated
const retryAfterSeconds = "5"

// Tasks is the task manager surface the handlers use
type Tasks interface {
	Submit(ctx context.Context, kind model.TaskKind, doc *model.Document, requested []string) (string, error)
	Status(id string) (model.Task, error)
	Result(id string, kind model.TaskKind) (model.Task, error)
	Cancel(id string) (model.Task, error)
	Queued() int
}

// Checker reports whether the model endpoint is reachable
type Checker interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}

type Handler struct {
	tasks   Tasks
	checker Checker
	logger  *slog.Logger
}

func New(tasks Tasks, checker Checker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		tasks:   tasks,
		checker: checker,
		logger:  logger,
	}
}

func (h *Handler) Attach(r chi.Router) {
	r.Post("/annotate-document", h.handleAnnotate)
	r.Post("/summarize-document", h.handleSummarize)

	r.Get("/task-status/{task_id}", h.handleStatus)
	r.Get("/annotated-document/{task_id}", h.handleAnnotated)
	r.Get("/summarized-document/{task_id}", h.handleSummarized)
	r.Delete("/task/{task_id}", h.handleCancel)

	r.Get("/health", h.handleHealth)
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func writeJson(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	text := http.StatusText(code)

	if err != nil {
		text = err.Error()
	}

	resp := errorResponse{Error: text}

	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		resp.Problems = verr.Problems
	}

	writeJson(w, code, resp)
}

// statusFor maps task errors onto HTTP status codes
func statusFor(err error) int {
	var verr *validate.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrUnknownTask), errors.Is(err, task.ErrKindMismatch):
		return http.StatusNotFound
	case errors.Is(err, task.ErrNotReady):
		return http.StatusAccepted
	case errors.Is(err, task.ErrTaskFailed):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrTaskCancelled):
		return http.StatusGone
	case errors.Is(err, task.ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, task.ErrCapacityExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
