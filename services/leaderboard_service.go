package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/repositories"
	"github.com/Dosada05/prediction-pool/scoring"
)

// LeaderboardCache stores the derived standing between scoring writes.
// Every Invalidate starts a new generation; SetIfCurrent refuses a standing
// computed under an older one.
type LeaderboardCache interface {
	Get(ctx context.Context) (standing []models.LeaderboardEntry, generation int64, hit bool, err error)
	SetIfCurrent(ctx context.Context, generation int64, standing []models.LeaderboardEntry) (bool, error)
	Invalidate(ctx context.Context) error
}

type LeaderboardService interface {
	GetStanding(ctx context.Context) ([]models.LeaderboardEntry, error)
}

type leaderboardService struct {
	repo    repositories.LeaderboardRepository
	cache   LeaderboardCache
	metrics *Metrics
	logger  *slog.Logger
}

func NewLeaderboardService(repo repositories.LeaderboardRepository, cache LeaderboardCache, metrics *Metrics, logger *slog.Logger) LeaderboardService {
	return &leaderboardService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// GetStanding derives the ranked standing from persisted prediction points.
// A cache failure falls back to the database.
func (s *leaderboardService) GetStanding(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		standing, gen, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Leaderboard cache read failed", slog.Any("error", err))
		} else {
			s.metrics.cacheLookup(ok)
			if ok {
				return standing, nil
			}
			generation, cacheable = gen, true
		}
	}

	totals, err := s.repo.ListParticipantTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant totals: %w", err)
	}
	standing := scoring.BuildStanding(totals)

	if cacheable {
		stored, err := s.cache.SetIfCurrent(ctx, generation, standing)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "Leaderboard cache write failed", slog.Any("error", err))
		case !stored:
			s.logger.DebugContext(ctx, "Scores changed while the leaderboard was computed, cache left empty")
		}
	}
	return standing, nil
}
