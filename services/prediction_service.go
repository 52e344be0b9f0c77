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

const maxPredictionBatchSize = 200

type PredictionService interface {
	Submit(ctx context.Context, userID int, items []models.PredictionInput, now time.Time) error
	ListMine(ctx context.Context, userID int) ([]models.PredictionView, error)
	ListForUser(ctx context.Context, userID int) ([]models.PredictionView, error)
	ListAll(ctx context.Context) ([]models.PredictionView, error)
}

type predictionService struct {
	tx             repositories.TxRunner
	lane           *WriteLane
	matchRepo      repositories.MatchRepository
	deadlineRepo   repositories.DeadlineRepository
	predictionRepo repositories.PredictionRepository
	userRepo       repositories.UserRepository
	metrics        *Metrics
	logger         *slog.Logger
}

func NewPredictionService(
	tx repositories.TxRunner,
	lane *WriteLane,
	matchRepo repositories.MatchRepository,
	deadlineRepo repositories.DeadlineRepository,
	predictionRepo repositories.PredictionRepository,
	userRepo repositories.UserRepository,
	metrics *Metrics,
	logger *slog.Logger,
) PredictionService {
	return &predictionService{
		tx:             tx,
		lane:           lane,
		matchRepo:      matchRepo,
		deadlineRepo:   deadlineRepo,
		predictionRepo: predictionRepo,
		userRepo:       userRepo,
		metrics:        metrics,
		logger:         logger,
	}
}

// Submit admits a batch of predictions all-or-nothing: every item is checked
// against its match and stage deadline before anything is written.
func (s *predictionService) Submit(ctx context.Context, userID int, items []models.PredictionInput, now time.Time) error {
	if err := validatePredictionBatch(items); err != nil {
		s.metrics.submissionRejected("validation")
		return err
	}

	err := s.lane.Do(ctx, func() error {
		return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.admit(ctx, exec, items, now); err != nil {
				return err
			}
			for _, item := range items {
				_, err := s.predictionRepo.Upsert(ctx, exec, userID, item.MatchID, *item.PredictedHomeScore, *item.PredictedAwayScore)
				if err != nil {
					return mapPredictionRepoError(err)
				}
			}
			return nil
		})
	})
	if err != nil {
		s.metrics.submissionRejected(rejectionReason(err))
		var closed *DeadlineClosedError
		if errors.As(err, &closed) {
			s.logger.DebugContext(ctx, "Prediction batch rejected, stage closed",
				slog.Int("user_id", userID), slog.String("stage", closed.Stage))
		}
		return err
	}

	s.metrics.predictionsAccepted(len(items))
	s.logger.InfoContext(ctx, "Predictions saved", slog.Int("user_id", userID), slog.Int("count", len(items)))
	return nil
}

// admit checks every item of the batch. The first failing item rejects the whole batch.
func (s *predictionService) admit(ctx context.Context, exec repositories.SQLExecutor, items []models.PredictionInput, now time.Time) error {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MatchID)
	}

	matches, err := s.matchRepo.ListByIDsForShare(ctx, exec, ids)
	if err != nil {
		return fmt.Errorf("failed to load matches for submission: %w", err)
	}

	// Дедлайны читаются один раз на стадию
	deadlines := make(map[string]*models.Deadline)
	for _, item := range items {
		match, ok := matches[item.MatchID]
		if !ok {
			return fmt.Errorf("%w: id %d", ErrMatchNotFound, item.MatchID)
		}

		deadline, seen := deadlines[match.Stage]
		if !seen {
			deadline, err = s.deadlineRepo.GetByStage(ctx, exec, match.Stage)
			if err != nil && !errors.Is(err, repositories.ErrDeadlineNotFound) {
				return fmt.Errorf("failed to load deadline for stage %q: %w", match.Stage, err)
			}
			deadlines[match.Stage] = deadline
		}

		if !scoring.IsStageOpen(deadline, now) {
			return &DeadlineClosedError{Stage: match.Stage}
		}
		if match.Status == models.MatchStatusCompleted {
			return fmt.Errorf("%w: id %d", ErrMatchCompleted, item.MatchID)
		}
	}
	return nil
}

func validatePredictionBatch(items []models.PredictionInput) error {
	if len(items) == 0 {
		return validationError("predictions array is required and must not be empty")
	}
	if len(items) > maxPredictionBatchSize {
		return validationError("at most %d predictions per request", maxPredictionBatchSize)
	}
	for i, item := range items {
		if item.MatchID <= 0 {
			return validationError("prediction %d: match_id must be a positive integer", i)
		}
		if item.PredictedHomeScore == nil || item.PredictedAwayScore == nil {
			return validationError("prediction %d: both scores are required", i)
		}
		if *item.PredictedHomeScore < 0 || *item.PredictedAwayScore < 0 {
			return validationError("prediction %d: scores must be non-negative", i)
		}
	}
	return nil
}

func mapPredictionRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPredictionReferenceInvalid):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repositories.ErrPredictionScoreInvalid):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	default:
		return fmt.Errorf("failed to save prediction: %w", err)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrDeadlineClosed):
		return "deadline_closed"
	case errors.Is(err, ErrMatchCompleted):
		return "match_completed"
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidationFailed):
		return "validation"
	default:
		return "error"
	}
}

func (s *predictionService) ListMine(ctx context.Context, userID int) ([]models.PredictionView, error) {
	views, err := s.predictionRepo.ListViewsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return views, nil
}

func (s *predictionService) ListForUser(ctx context.Context, userID int) ([]models.PredictionView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return s.ListMine(ctx, userID)
}

func (s *predictionService) ListAll(ctx context.Context) ([]models.PredictionView, error) {
	views, err := s.predictionRepo.ListViews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return views, nil
}
