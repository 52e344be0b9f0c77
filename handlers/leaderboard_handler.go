package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/prediction-pool/scoring"
	"github.com/Dosada05/prediction-pool/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
	prizePoolService   services.PrizePoolService
	rules              *scoring.Rules
	logger             *slog.Logger
}

func NewLeaderboardHandler(
	leaderboardService services.LeaderboardService,
	prizePoolService services.PrizePoolService,
	rules *scoring.Rules,
	logger *slog.Logger,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		prizePoolService:   prizePoolService,
		rules:              rules,
		logger:             logger,
	}
}

func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	standing, err := h.leaderboardService.GetStanding(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": standing}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *LeaderboardHandler) GetPrizePool(w http.ResponseWriter, r *http.Request) {
	pool, err := h.prizePoolService.Get(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"prize_pool": pool}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *LeaderboardHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rules": h.rules.List()}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
