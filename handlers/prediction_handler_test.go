package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/prediction-pool/middleware"
	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withUser(r *http.Request, userID int) *http.Request {
	claims := jwt.MapClaims{"user_id": float64(userID), "role": string(models.RoleParticipant)}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func newPredictionHandler(svc services.PredictionService) *PredictionHandler {
	h := NewPredictionHandler(svc, discardLogger())
	h.now = fixedNow
	return h
}

func TestPredictionHandler_Submit(t *testing.T) {
	var gotUser int
	var gotItems []models.PredictionInput
	var gotNow time.Time
	svc := &fakePredictionService{submitFn: func(ctx context.Context, userID int, items []models.PredictionInput, now time.Time) error {
		gotUser, gotItems, gotNow = userID, items, now
		return nil
	}}
	h := newPredictionHandler(svc)

	body := `{"predictions":[{"match_id":3,"predicted_home_score":2,"predicted_away_score":0}]}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/predictions", strings.NewReader(body)), 7)
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, gotUser)
	require.Len(t, gotItems, 1)
	assert.Equal(t, 3, gotItems[0].MatchID)
	assert.Equal(t, 2, *gotItems[0].PredictedHomeScore)
	assert.Equal(t, fixedNow(), gotNow)
	assert.EqualValues(t, 1, decodeBody(t, rec)["count"])
}

func TestPredictionHandler_SubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		authed     bool
		serviceErr error
		wantStatus int
		wantStage  string
	}{
		{name: "no claims", body: `{"predictions":[]}`, wantStatus: http.StatusUnauthorized},
		{name: "malformed json", body: `{"predictions":`, authed: true, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"picks":[]}`, authed: true, wantStatus: http.StatusBadRequest},
		{
			name: "deadline closed", body: `{"predictions":[]}`, authed: true,
			serviceErr: &services.DeadlineClosedError{Stage: "Round of 16"},
			wantStatus: http.StatusForbidden, wantStage: "Round of 16",
		},
		{
			name: "match completed", body: `{"predictions":[]}`, authed: true,
			serviceErr: fmt.Errorf("match 4: %w", services.ErrMatchCompleted), wantStatus: http.StatusForbidden,
		},
		{
			name: "unknown match", body: `{"predictions":[]}`, authed: true,
			serviceErr: services.ErrMatchNotFound, wantStatus: http.StatusNotFound,
		},
		{
			name: "validation", body: `{"predictions":[]}`, authed: true,
			serviceErr: fmt.Errorf("%w: empty batch", services.ErrValidationFailed), wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePredictionService{submitFn: func(context.Context, int, []models.PredictionInput, time.Time) error {
				return tt.serviceErr
			}}
			h := newPredictionHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/predictions", strings.NewReader(tt.body))
			if tt.authed {
				req = withUser(req, 7)
			}
			rec := httptest.NewRecorder()
			h.Submit(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			assert.NotEmpty(t, body["error"])
			if tt.wantStage != "" {
				assert.Equal(t, tt.wantStage, body["stage"])
			}
		})
	}
}

func TestPredictionHandler_ListForUser(t *testing.T) {
	svc := &fakePredictionService{listed: []models.PredictionView{
		{Prediction: models.Prediction{ID: 1, UserID: 5, MatchID: 2}, Stage: "Group Stage"},
	}}
	h := newPredictionHandler(svc)

	r := chi.NewRouter()
	r.Get("/api/users/{userID}/predictions", h.ListForUser)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/5/predictions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["predictions"], 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/abc/predictions", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.listErr = services.ErrUserNotFound
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/99/predictions", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPredictionHandler_ListMineRequiresClaims(t *testing.T) {
	h := newPredictionHandler(&fakePredictionService{})

	rec := httptest.NewRecorder()
	h.ListMine(rec, httptest.NewRequest(http.MethodGet, "/api/predictions/mine", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ListMine(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/predictions/mine", nil), 3))
	assert.Equal(t, http.StatusOK, rec.Code)
}
