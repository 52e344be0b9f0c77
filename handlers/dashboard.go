package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-pool/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
	logger           *slog.Logger
	now              func() time.Time
}

func NewDashboardHandler(s services.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: s, logger: logger, now: time.Now}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetStats(r.Context(), h.now())
	if err != nil {
		serverErrorResponse(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
