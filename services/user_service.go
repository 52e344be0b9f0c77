package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/repositories"
	"github.com/Dosada05/prediction-pool/scoring"
	"golang.org/x/sync/errgroup"
)

type UserService interface {
	GetSummary(ctx context.Context, userID int) (*models.UserSummary, error)
}

type userService struct {
	userRepo       repositories.UserRepository
	predictionRepo repositories.PredictionRepository
	leaderboard    LeaderboardService
}

func NewUserService(userRepo repositories.UserRepository, predictionRepo repositories.PredictionRepository, leaderboard LeaderboardService) UserService {
	return &userService{
		userRepo:       userRepo,
		predictionRepo: predictionRepo,
		leaderboard:    leaderboard,
	}
}

// GetSummary collects the standing entry and the predictions of one user.
// Standing is nil for users that are not ranked (admins, inactive accounts).
func (s *userService) GetSummary(ctx context.Context, userID int) (*models.UserSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	var (
		standing    []models.LeaderboardEntry
		predictions []models.PredictionView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		standing, err = s.leaderboard.GetStanding(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		predictions, err = s.predictionRepo.ListViewsByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build summary for user %d: %w", userID, err)
	}

	summary := &models.UserSummary{
		UserID:      user.ID,
		DisplayName: user.Name(),
		Predictions: predictions,
	}
	if entry, ok := scoring.EntryFor(standing, userID); ok {
		summary.Standing = entry
	}
	return summary, nil
}
