package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-pool/services"
)

type DeadlineHandler struct {
	deadlineService services.DeadlineService
	logger          *slog.Logger
	now             func() time.Time
}

func NewDeadlineHandler(deadlineService services.DeadlineService, logger *slog.Logger) *DeadlineHandler {
	return &DeadlineHandler{deadlineService: deadlineService, logger: logger, now: time.Now}
}

func (h *DeadlineHandler) List(w http.ResponseWriter, r *http.Request) {
	deadlines, err := h.deadlineService.List(r.Context(), h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"deadlines": deadlines}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
