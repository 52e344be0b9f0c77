package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-pool/middleware"
	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
	logger            *slog.Logger
	now               func() time.Time
}

func NewPredictionHandler(predictionService services.PredictionService, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		logger:            logger,
		now:               time.Now,
	}
}

type submitPredictionsInput struct {
	Predictions []models.PredictionInput `json:"predictions"`
}

func (h *PredictionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, h.logger)
		return
	}

	var input submitPredictionsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	if err := h.predictionService.Submit(r.Context(), userID, input.Predictions, h.now()); err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	resp := jsonResponse{"message": "predictions saved", "count": len(input.Predictions)}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *PredictionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, h.logger)
		return
	}

	predictions, err := h.predictionService.ListMine(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"predictions": predictions}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *PredictionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.predictionService.ListAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"predictions": predictions}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *PredictionHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	predictions, err := h.predictionService.ListForUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"predictions": predictions}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
