package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-pool/handlers"
	"github.com/Dosada05/prediction-pool/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestTimeout = 30 * time.Second

type Handlers struct {
	Predictions *handlers.PredictionHandler
	Admin       *handlers.AdminHandler
	Leaderboard *handlers.LeaderboardHandler
	Matches     *handlers.MatchHandler
	Deadlines   *handlers.DeadlineHandler
	Users       *handlers.UserHandler
	WebSocket   *handlers.WebSocketHandler
	Health      *handlers.HealthHandler
	Dashboard   *handlers.DashboardHandler
	AdminUsers  *handlers.AdminUserHandler
	Teams       *handlers.TeamHandler
}

type Options struct {
	Auth               *middleware.Authenticator
	SubmissionLimiter  *middleware.KeyedRateLimiter
	CORSAllowedOrigins []string
	Gatherer           prometheus.Gatherer
	Logger             *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)

	router.Get("/health", h.Health.Health)
	router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	// Websocket живет дольше таймаута запросов, поэтому вне группы /api
	router.Get("/ws/leaderboard", h.WebSocket.ServeLeaderboard)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		// Публичные маршруты
		r.Get("/matches", h.Matches.List)
		r.Get("/matches/{matchID}", h.Matches.Get)
		r.Get("/deadlines", h.Deadlines.List)
		r.Get("/teams", h.Teams.List)
		r.Get("/teams/{teamID}", h.Teams.Get)
		r.Get("/rules", h.Leaderboard.GetRules)
		r.Get("/prize-pool", h.Leaderboard.GetPrizePool)
		r.Get("/leaderboard", h.Leaderboard.GetLeaderboard)
		r.Get("/predictions/all", h.Predictions.ListAll)
		r.Get("/users/{userID}/predictions", h.Predictions.ListForUser)
		r.Get("/users/{userID}/summary", h.Users.GetSummary)

		// Маршруты участника
		r.Group(func(r chi.Router) {
			r.Use(opts.Auth.Authenticate)

			r.Get("/predictions/mine", h.Predictions.ListMine)
			r.With(middleware.RateLimit(opts.SubmissionLimiter)).Post("/predictions", h.Predictions.Submit)
		})

		r.Group(func(r chi.Router) {
			r.Use(opts.Auth.Authenticate)
			r.Use(middleware.RequireAdmin)

			r.Get("/leaderboard/export", h.Admin.ExportLeaderboard)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/dashboard", h.Dashboard.Stats)
				r.Get("/users", h.AdminUsers.ListUsers)
				r.Post("/matches/{matchID}/result", h.Admin.RecordResult)
				r.Post("/matches/{matchID}/recalculate", h.Admin.RecalculateOne)
				r.Post("/scores/recalculate", h.Admin.RecalculateAll)
				r.Put("/deadlines/{stage}", h.Admin.UpdateDeadline)
				r.Post("/leaderboard/snapshots", h.Admin.PublishSnapshot)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
