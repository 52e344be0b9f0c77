package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/prediction-pool/handlers"
	"github.com/Dosada05/prediction-pool/live"
	"github.com/Dosada05/prediction-pool/middleware"
	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/scoring"
	"github.com/Dosada05/prediction-pool/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const testSecret = "routes-secret"

type stubPredictions struct{ submitted int }

func (s *stubPredictions) Submit(context.Context, int, []models.PredictionInput, time.Time) error {
	s.submitted++
	return nil
}
func (s *stubPredictions) ListMine(context.Context, int) ([]models.PredictionView, error) {
	return nil, nil
}
func (s *stubPredictions) ListForUser(context.Context, int) ([]models.PredictionView, error) {
	return nil, nil
}
func (s *stubPredictions) ListAll(context.Context) ([]models.PredictionView, error) { return nil, nil }

type stubScoring struct{}

func (stubScoring) RecordResult(context.Context, int, int, int) (*models.MatchScoreSummary, error) {
	return &models.MatchScoreSummary{}, nil
}
func (stubScoring) RecalculateOne(context.Context, int) (*models.MatchScoreSummary, error) {
	return &models.MatchScoreSummary{}, nil
}
func (stubScoring) RecalculateAll(context.Context) (*models.RecalculationReport, error) {
	return &models.RecalculationReport{}, nil
}

type stubDeadlines struct{}

func (stubDeadlines) List(context.Context, time.Time) ([]models.DeadlineView, error) { return nil, nil }
func (stubDeadlines) Update(_ context.Context, stage string, _ models.DeadlineUpdate, _ time.Time) (*models.DeadlineView, error) {
	return &models.DeadlineView{Deadline: models.Deadline{Stage: stage}}, nil
}

type stubExport struct{}

func (stubExport) LeaderboardWorkbook(context.Context) ([]byte, error) { return []byte("xlsx"), nil }
func (stubExport) PublishSnapshot(context.Context, time.Time) (*services.Snapshot, error) {
	return nil, services.ErrExportUnavailable
}

type stubLeaderboard struct{}

func (stubLeaderboard) GetStanding(context.Context) ([]models.LeaderboardEntry, error) {
	return []models.LeaderboardEntry{}, nil
}

type stubPrize struct{}

func (stubPrize) Get(context.Context) (*models.PrizePool, error) { return &models.PrizePool{}, nil }

type stubMatches struct{}

func (stubMatches) List(context.Context, *string) ([]models.MatchView, error) { return nil, nil }
func (stubMatches) GetByID(context.Context, int) (*models.MatchView, error) {
	return nil, services.ErrMatchNotFound
}

type stubUsers struct{}

func (stubUsers) GetSummary(context.Context, int) (*models.UserSummary, error) {
	return &models.UserSummary{}, nil
}

type stubDashboard struct{}

func (stubDashboard) GetStats(context.Context, time.Time) (models.DashboardStats, error) {
	return models.DashboardStats{}, nil
}

type stubAdminUsers struct{}

func (stubAdminUsers) ListUsers(_ context.Context, filter models.UserFilter) (models.UserListResponse, error) {
	return models.UserListResponse{Users: []models.User{}, Page: filter.Page, Limit: filter.Limit}, nil
}

type stubTeams struct{}

func (stubTeams) List(context.Context, string) ([]models.Team, error) { return []models.Team{}, nil }
func (stubTeams) GetByID(context.Context, int) (*models.Team, error) {
	return nil, services.ErrNotFound
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestRouter(t *testing.T, limiter *middleware.KeyedRateLimiter) (chi.Router, *stubPredictions) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	predictions := &stubPredictions{}
	registry := prometheus.NewRegistry()
	services.NewMetrics(registry)

	if limiter == nil {
		limiter = middleware.NewKeyedRateLimiter(rate.Inf, 1)
	}

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Predictions: handlers.NewPredictionHandler(predictions, logger),
		Admin:       handlers.NewAdminHandler(stubScoring{}, stubDeadlines{}, stubExport{}, logger),
		Leaderboard: handlers.NewLeaderboardHandler(stubLeaderboard{}, stubPrize{}, scoring.DefaultRules(), logger),
		Matches:     handlers.NewMatchHandler(stubMatches{}, logger),
		Deadlines:   handlers.NewDeadlineHandler(stubDeadlines{}, logger),
		Users:       handlers.NewUserHandler(stubUsers{}, logger),
		WebSocket:   handlers.NewWebSocketHandler(live.NewHub(logger), nil, logger),
		Health:      handlers.NewHealthHandler(okPinger{}, logger),
		Dashboard:   handlers.NewDashboardHandler(stubDashboard{}, logger),
		AdminUsers:  handlers.NewAdminUserHandler(stubAdminUsers{}, logger),
		Teams:       handlers.NewTeamHandler(stubTeams{}, logger),
	}, Options{
		Auth:               middleware.NewAuthenticator(testSecret, logger),
		SubmissionLimiter:  limiter,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		Gatherer:           registry,
		Logger:             logger,
	})
	return router, predictions
}

func bearer(t *testing.T, userID int, role models.UserRole) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(router http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Access(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	participant := bearer(t, 7, models.RoleParticipant)
	admin := bearer(t, 1, models.RoleAdmin)
	submission := `{"predictions":[{"match_id":1,"predicted_home_score":1,"predicted_away_score":0}]}`

	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		body       string
		wantStatus int
	}{
		{"public leaderboard", http.MethodGet, "/api/leaderboard", "", "", http.StatusOK},
		{"public rules", http.MethodGet, "/api/rules", "", "", http.StatusOK},
		{"public prize pool", http.MethodGet, "/api/prize-pool", "", "", http.StatusOK},
		{"public deadlines", http.MethodGet, "/api/deadlines", "", "", http.StatusOK},
		{"public all predictions", http.MethodGet, "/api/predictions/all", "", "", http.StatusOK},
		{"public user summary", http.MethodGet, "/api/users/3/summary", "", "", http.StatusOK},
		{"public teams", http.MethodGet, "/api/teams?group=A", "", "", http.StatusOK},
		{"unknown team", http.MethodGet, "/api/teams/77", "", "", http.StatusNotFound},
		{"unknown match", http.MethodGet, "/api/matches/3", "", "", http.StatusNotFound},
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", "", "", http.StatusNotFound},

		{"submit without token", http.MethodPost, "/api/predictions", "", submission, http.StatusUnauthorized},
		{"submit as participant", http.MethodPost, "/api/predictions", participant, submission, http.StatusOK},
		{"mine without token", http.MethodGet, "/api/predictions/mine", "", "", http.StatusUnauthorized},

		{"admin route without token", http.MethodPost, "/api/admin/scores/recalculate", "", "", http.StatusUnauthorized},
		{"admin route as participant", http.MethodPost, "/api/admin/scores/recalculate", participant, "", http.StatusForbidden},
		{"admin recalculate", http.MethodPost, "/api/admin/scores/recalculate", admin, "", http.StatusOK},
		{"admin result", http.MethodPost, "/api/admin/matches/4/result", admin, `{"home_score":1,"away_score":2}`, http.StatusOK},
		{"admin deadline", http.MethodPut, "/api/admin/deadlines/Final", admin, `{"is_locked":true}`, http.StatusOK},
		{"export as participant", http.MethodGet, "/api/leaderboard/export", participant, "", http.StatusForbidden},
		{"export as admin", http.MethodGet, "/api/leaderboard/export", admin, "", http.StatusOK},
		{"admin dashboard", http.MethodGet, "/api/admin/dashboard", admin, "", http.StatusOK},
		{"admin users as participant", http.MethodGet, "/api/admin/users", participant, "", http.StatusForbidden},
		{"admin users", http.MethodGet, "/api/admin/users?page=2", admin, "", http.StatusOK},
		{"snapshot without storage", http.MethodPost, "/api/admin/leaderboard/snapshots", admin, "", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.method, tt.path, tt.auth, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestRoutes_SubmissionRateLimited(t *testing.T) {
	router, predictions := newTestRouter(t, middleware.NewKeyedRateLimiter(rate.Every(time.Hour), 1))
	participant := bearer(t, 7, models.RoleParticipant)
	submission := `{"predictions":[{"match_id":1,"predicted_home_score":1,"predicted_away_score":0}]}`

	first := serve(router, http.MethodPost, "/api/predictions", participant, submission)
	require.Equal(t, http.StatusOK, first.Code)

	second := serve(router, http.MethodPost, "/api/predictions", participant, submission)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, 1, predictions.submitted)

	// Другой пользователь получает свой лимит
	other := serve(router, http.MethodPost, "/api/predictions", bearer(t, 8, models.RoleParticipant), submission)
	assert.Equal(t, http.StatusOK, other.Code)
}
