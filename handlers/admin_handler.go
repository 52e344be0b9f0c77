package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/services"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	scoringService  services.ScoringService
	deadlineService services.DeadlineService
	exportService   services.ExportService
	logger          *slog.Logger
	now             func() time.Time
}

func NewAdminHandler(
	scoringService services.ScoringService,
	deadlineService services.DeadlineService,
	exportService services.ExportService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		scoringService:  scoringService,
		deadlineService: deadlineService,
		exportService:   exportService,
		logger:          logger,
		now:             time.Now,
	}
}

type recordResultInput struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
}

func (h *AdminHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := parseIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	var input recordResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}
	if input.HomeScore == nil || input.AwayScore == nil {
		badRequestResponse(w, r, h.logger, errors.New("home_score and away_score are required"))
		return
	}

	summary, err := h.scoringService.RecordResult(r.Context(), matchID, *input.HomeScore, *input.AwayScore)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": summary}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// RecalculateAll always answers 200 with the report; per-match failures are listed in it.
func (h *AdminHandler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.scoringService.RecalculateAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *AdminHandler) RecalculateOne(w http.ResponseWriter, r *http.Request) {
	matchID, err := parseIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	summary, err := h.scoringService.RecalculateOne(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": summary}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *AdminHandler) UpdateDeadline(w http.ResponseWriter, r *http.Request) {
	// Название стадии содержит пробелы ("Round of 16"), в URL оно экранировано
	stage, err := url.PathUnescape(chi.URLParam(r, "stage"))
	if err != nil || stage == "" {
		badRequestResponse(w, r, h.logger, errors.New("invalid stage"))
		return
	}

	var input models.DeadlineUpdate
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	deadline, err := h.deadlineService.Update(r.Context(), stage, input, h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"deadline": deadline}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *AdminHandler) ExportLeaderboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.LeaderboardWorkbook(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	filename := "leaderboard-" + h.now().UTC().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write leaderboard export", slog.Any("error", err))
	}
}

func (h *AdminHandler) PublishSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.exportService.PublishSnapshot(r.Context(), h.now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"snapshot": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
