package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/prediction-pool/cache"
	"github.com/Dosada05/prediction-pool/config"
	"github.com/Dosada05/prediction-pool/db"
	"github.com/Dosada05/prediction-pool/handlers"
	"github.com/Dosada05/prediction-pool/live"
	"github.com/Dosada05/prediction-pool/middleware"
	"github.com/Dosada05/prediction-pool/repositories"
	api "github.com/Dosada05/prediction-pool/routes"
	"github.com/Dosada05/prediction-pool/scoring"
	"github.com/Dosada05/prediction-pool/services"
	"github.com/Dosada05/prediction-pool/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		version, err := db.MigrateUp(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database migrations applied", slog.Uint64("version", uint64(version)))
	}

	// Таблица очков по стадиям
	rules := scoring.DefaultRules()
	if cfg.StageRulesFile != "" {
		rules, err = scoring.LoadRules(cfg.StageRulesFile)
		if err != nil {
			logger.Error("failed to load stage rules", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("stage rules loaded", slog.String("file", cfg.StageRulesFile))
	}

	// Кэш таблицы лидеров (опционально)
	var leaderboardCache services.LeaderboardCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.New(rootCtx, cfg.RedisURL, cfg.LeaderboardCacheTTL, logger)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisCache.Close()
		leaderboardCache = redisCache
		logger.Info("leaderboard cache enabled", slog.Duration("ttl", cfg.LeaderboardCacheTTL))
	} else {
		logger.Info("REDIS_URL not set, leaderboard cache disabled")
	}

	// Инициализация загрузчика файлов (Cloudflare R2), тоже опционально
	var uploader storage.FileUploader
	r2cfg := storage.R2Config(cfg.R2)
	if r2cfg.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(rootCtx, r2cfg)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	}

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(registry)

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run(rootCtx)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	deadlineRepo := repositories.NewPostgresDeadlineRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов. Все записи идут через одну полосу
	lane := services.NewWriteLane()
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, leaderboardCache, metrics, logger)
	predictionService := services.NewPredictionService(txRunner, lane, matchRepo, deadlineRepo, predictionRepo, userRepo, metrics, logger)
	scoringService := services.NewScoringService(txRunner, lane, matchRepo, predictionRepo, rules, leaderboardCache, wsHub, metrics, logger)
	deadlineService := services.NewDeadlineService(txRunner, lane, deadlineRepo, logger)
	matchService := services.NewMatchService(matchRepo)
	prizePoolService := services.NewPrizePoolService(userRepo, cfg.PrizePerPerson)
	userService := services.NewUserService(userRepo, predictionRepo, leaderboardService)
	exportService := services.NewExportService(leaderboardService, uploader, logger)
	dashboardService := services.NewDashboardService(userRepo, matchRepo, predictionRepo, deadlineRepo)
	adminUserService := services.NewAdminUserService(userRepo)
	teamService := services.NewTeamService(teamRepo)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Predictions: handlers.NewPredictionHandler(predictionService, logger),
		Admin:       handlers.NewAdminHandler(scoringService, deadlineService, exportService, logger),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService, prizePoolService, rules, logger),
		Matches:     handlers.NewMatchHandler(matchService, logger),
		Deadlines:   handlers.NewDeadlineHandler(deadlineService, logger),
		Users:       handlers.NewUserHandler(userService, logger),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
		Health:      handlers.NewHealthHandler(dbConn, logger),
		Dashboard:   handlers.NewDashboardHandler(dashboardService, logger),
		AdminUsers:  handlers.NewAdminUserHandler(adminUserService, logger),
		Teams:       handlers.NewTeamHandler(teamService, logger),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, api.Options{
		Auth:               middleware.NewAuthenticator(cfg.JWTSecretKey, logger),
		SubmissionLimiter:  middleware.NewKeyedRateLimiter(rate.Limit(cfg.PredictionRatePerSecond), cfg.PredictionRateBurst),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Gatherer:           registry,
		Logger:             logger,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
