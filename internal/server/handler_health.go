package server

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status        string `json:"status"`
	Provider      string `json:"provider,omitempty"`
	ModelEndpoint string `json:"model_endpoint"`
	QueuedTasks   int    `json:"queued_tasks"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "healthy",
		ModelEndpoint: "reachable",
		QueuedTasks:   h.tasks.Queued(),
	}

	if h.checker != nil {
		resp.Provider = h.checker.Name()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if !h.checker.IsAvailable(ctx) {
			resp.Status = "degraded"
			resp.ModelEndpoint = "unreachable"
		}
	}

	writeJson(w, http.StatusOK, resp)
}
