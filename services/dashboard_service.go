package services

import (
	"context"
	"time"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/repositories"
	"github.com/Dosada05/prediction-pool/scoring"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context, now time.Time) (models.DashboardStats, error)
}

type dashboardService struct {
	userRepo       repositories.UserRepository
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	deadlineRepo   repositories.DeadlineRepository
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	deadlineRepo repositories.DeadlineRepository,
) DashboardService {
	return &dashboardService{
		userRepo:       userRepo,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		deadlineRepo:   deadlineRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context, now time.Time) (models.DashboardStats, error) {
	var (
		participants int
		predictions  int
		byStatus     map[models.MatchStatus]int
		deadlines    []models.Deadline
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		participants, err = s.userRepo.CountActiveParticipants(gctx)
		return err
	})
	g.Go(func() (err error) {
		predictions, err = s.predictionRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.matchRepo.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		deadlines, err = s.deadlineRepo.List(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}

	stats := models.DashboardStats{
		ParticipantsTotal: participants,
		PredictionsTotal:  predictions,
		MatchesCompleted:  byStatus[models.MatchStatusCompleted],
		MatchesUpcoming:   byStatus[models.MatchStatusUpcoming],
		OpenStages:        make([]string, 0, len(deadlines)),
		LockedStages:      make([]string, 0),
	}
	for _, n := range byStatus {
		stats.MatchesTotal += n
	}
	for i := range deadlines {
		if scoring.IsStageOpen(&deadlines[i], now) {
			stats.OpenStages = append(stats.OpenStages, deadlines[i].Stage)
		} else {
			stats.LockedStages = append(stats.LockedStages, deadlines[i].Stage)
		}
	}
	return stats, nil
}
