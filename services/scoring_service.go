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

// LeaderboardRoom is the live room notified after every scoring write.
const LeaderboardRoom = "leaderboard"

// RoomBroadcaster pushes a message to every client of a live room.
type RoomBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type LeaderboardUpdatedPayload struct {
	MatchIDs  []int     `json:"match_ids"`
	Reason    string    `json:"reason"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ScoringService interface {
	RecordResult(ctx context.Context, matchID, homeScore, awayScore int) (*models.MatchScoreSummary, error)
	RecalculateOne(ctx context.Context, matchID int) (*models.MatchScoreSummary, error)
	RecalculateAll(ctx context.Context) (*models.RecalculationReport, error)
}

type scoringService struct {
	tx             repositories.TxRunner
	lane           *WriteLane
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	rules          *scoring.Rules
	cache          LeaderboardCache
	broadcaster    RoomBroadcaster
	metrics        *Metrics
	logger         *slog.Logger
}

func NewScoringService(
	tx repositories.TxRunner,
	lane *WriteLane,
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	rules *scoring.Rules,
	cache LeaderboardCache,
	broadcaster RoomBroadcaster,
	metrics *Metrics,
	logger *slog.Logger,
) ScoringService {
	if rules == nil {
		rules = scoring.DefaultRules()
	}
	return &scoringService{
		tx:             tx,
		lane:           lane,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		rules:          rules,
		cache:          cache,
		broadcaster:    broadcaster,
		metrics:        metrics,
		logger:         logger,
	}
}

// RecordResult stores the final score of a match and rescores its predictions
// in the same transaction.
func (s *scoringService) RecordResult(ctx context.Context, matchID, homeScore, awayScore int) (*models.MatchScoreSummary, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, validationError("scores must be non-negative")
	}

	started := time.Now()
	var summary *models.MatchScoreSummary
	err := s.lane.Do(ctx, func() error {
		return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.matchRepo.SetResult(ctx, exec, matchID, homeScore, awayScore); err != nil {
				return mapMatchRepoError(err)
			}
			var err error
			summary, err = s.scoreMatch(ctx, exec, matchID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.scoringPass("result", started, summary.PredictionsUpdated)
	s.logger.InfoContext(ctx, "Match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("home_score", homeScore),
		slog.Int("away_score", awayScore),
		slog.Int("predictions_updated", summary.PredictionsUpdated))
	s.afterScoring(ctx, "result_recorded", []int{matchID})
	return summary, nil
}

func (s *scoringService) RecalculateOne(ctx context.Context, matchID int) (*models.MatchScoreSummary, error) {
	started := time.Now()
	var summary *models.MatchScoreSummary
	err := s.lane.Do(ctx, func() error {
		return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			var err error
			summary, err = s.scoreMatch(ctx, exec, matchID)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			s.logger.ErrorContext(ctx, "Recalculation requested for a match without a result",
				slog.Int("match_id", matchID), slog.Any("error", err))
		}
		return nil, err
	}

	s.metrics.scoringPass("single", started, summary.PredictionsUpdated)
	s.afterScoring(ctx, "match_recalculated", []int{matchID})
	return summary, nil
}

// RecalculateAll rescores every completed match, each in its own transaction.
// A failing match is recorded in the report and the sweep moves on.
func (s *scoringService) RecalculateAll(ctx context.Context) (*models.RecalculationReport, error) {
	report := &models.RecalculationReport{
		Failures:  []models.MatchFailure{},
		StartedAt: time.Now().UTC(),
	}
	var scoredIDs []int

	err := s.lane.Do(ctx, func() error {
		matches, err := s.matchRepo.ListCompleted(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to list completed matches: %w", err)
		}

		for _, match := range matches {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			var summary *models.MatchScoreSummary
			txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
				var scoreErr error
				summary, scoreErr = s.scoreMatch(ctx, exec, match.ID)
				return scoreErr
			})
			if txErr != nil {
				s.metrics.scoringFailed()
				s.logger.ErrorContext(ctx, "Failed to recalculate match",
					slog.Int("match_id", match.ID), slog.Any("error", txErr))
				report.Failures = append(report.Failures, models.MatchFailure{MatchID: match.ID, Error: txErr.Error()})
				continue
			}

			report.MatchesScored++
			report.PredictionsUpdated += summary.PredictionsUpdated
			scoredIDs = append(scoredIDs, match.ID)
		}
		return nil
	})
	report.Duration = time.Since(report.StartedAt)

	if len(scoredIDs) > 0 {
		s.metrics.scoringPass("full", report.StartedAt, report.PredictionsUpdated)
		s.afterScoring(ctx, "full_recalculation", scoredIDs)
	}
	if err != nil {
		return report, err
	}

	s.logger.InfoContext(ctx, "Full recalculation finished",
		slog.Int("matches_scored", report.MatchesScored),
		slog.Int("predictions_updated", report.PredictionsUpdated),
		slog.Int("failures", len(report.Failures)),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// scoreMatch overwrites the derived fields of every prediction of one match.
// It must run inside a transaction.
func (s *scoringService) scoreMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.MatchScoreSummary, error) {
	match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	if !match.HasResult() {
		return nil, fmt.Errorf("%w: match %d has no final result", ErrInvalidState, matchID)
	}

	rule, known := s.rules.Lookup(match.Stage)
	if !known {
		s.logger.WarnContext(ctx, "Unknown stage, using default points",
			slog.Int("match_id", matchID), slog.String("stage", match.Stage))
		rule = scoring.DefaultRule
	}

	predictions, err := s.predictionRepo.ListByMatch(ctx, exec, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions for match %d: %w", matchID, err)
	}

	scored, err := scoring.ScoreMatch(match, rule, predictions)
	if err != nil {
		if errors.Is(err, scoring.ErrMatchNotCompleted) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		return nil, err
	}

	for _, sp := range scored {
		if err := s.predictionRepo.UpdateScore(ctx, exec, sp); err != nil {
			return nil, fmt.Errorf("failed to store score for match %d: %w", matchID, err)
		}
	}

	return &models.MatchScoreSummary{
		MatchID:            match.ID,
		Stage:              match.Stage,
		HomeScore:          *match.HomeScore,
		AwayScore:          *match.AwayScore,
		PredictionsUpdated: len(scored),
		Scored:             scored,
	}, nil
}

func (s *scoringService) afterScoring(ctx context.Context, reason string, matchIDs []int) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "Failed to invalidate leaderboard cache", slog.Any("error", err))
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(LeaderboardRoom, LiveMessage{
			Type: "LEADERBOARD_UPDATED",
			Payload: LeaderboardUpdatedPayload{
				MatchIDs:  matchIDs,
				Reason:    reason,
				UpdatedAt: time.Now().UTC(),
			},
			RoomID: LeaderboardRoom,
		})
	}
}

// LiveMessage is the envelope pushed to live clients.
type LiveMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

func mapMatchRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchResultInvalid):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	default:
		return err
	}
}
