package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/repositories"
	"github.com/Dosada05/prediction-pool/scoring"
)

type DeadlineService interface {
	List(ctx context.Context, now time.Time) ([]models.DeadlineView, error)
	Update(ctx context.Context, stage string, update models.DeadlineUpdate, now time.Time) (*models.DeadlineView, error)
}

type deadlineService struct {
	tx     repositories.TxRunner
	lane   *WriteLane
	repo   repositories.DeadlineRepository
	logger *slog.Logger
}

func NewDeadlineService(tx repositories.TxRunner, lane *WriteLane, repo repositories.DeadlineRepository, logger *slog.Logger) DeadlineService {
	return &deadlineService{
		tx:     tx,
		lane:   lane,
		repo:   repo,
		logger: logger,
	}
}

func (s *deadlineService) List(ctx context.Context, now time.Time) ([]models.DeadlineView, error) {
	deadlines, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list deadlines: %w", err)
	}

	views := make([]models.DeadlineView, 0, len(deadlines))
	for i := range deadlines {
		views = append(views, models.DeadlineView{
			Deadline: deadlines[i],
			IsOpen:   scoring.IsStageOpen(&deadlines[i], now),
		})
	}
	return views, nil
}

// Update changes the cutoff and/or the manual lock of a stage.
func (s *deadlineService) Update(ctx context.Context, stage string, update models.DeadlineUpdate, now time.Time) (*models.DeadlineView, error) {
	if stage == "" {
		return nil, validationError("stage is required")
	}
	if update.IsEmpty() {
		return nil, validationError("no fields to update")
	}
	if update.DeadlineAt != nil && update.DeadlineAt.IsZero() {
		return nil, validationError("deadline_datetime must be a valid timestamp")
	}

	var updated *models.Deadline
	err := s.lane.Do(ctx, func() error {
		return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			var err error
			updated, err = s.repo.Update(ctx, exec, stage, update)
			if err != nil {
				if errors.Is(err, repositories.ErrDeadlineNotFound) {
					return fmt.Errorf("%w: %s", ErrStageNotFound, stage)
				}
				return fmt.Errorf("failed to update deadline: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Deadline updated",
		slog.String("stage", updated.Stage),
		slog.Time("deadline_at", updated.DeadlineAt),
		slog.Bool("is_locked", updated.IsLocked))
	return &models.DeadlineView{Deadline: *updated, IsOpen: scoring.IsStageOpen(updated, now)}, nil
}
