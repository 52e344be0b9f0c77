package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/jmoiron/sqlx"
)

var (
	ErrPredictionNotFound         = errors.New("prediction not found")
	ErrPredictionReferenceInvalid = errors.New("prediction references an unknown user or match")
	ErrPredictionScoreInvalid     = errors.New("prediction scores violate a constraint")
)

type PredictionRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, userID, matchID, homeScore, awayScore int) (int, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Prediction, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, scored models.ScoredPrediction) error
	ListViewsByUser(ctx context.Context, userID int) ([]models.PredictionView, error)
	ListViews(ctx context.Context) ([]models.PredictionView, error)
	Count(ctx context.Context) (int, error)
}

type postgresPredictionRepository struct {
	db *sqlx.DB
}

func NewPostgresPredictionRepository(db *sqlx.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

func (r *postgresPredictionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert writes the predicted scores of (userID, matchID). Derived scoring
// fields of an existing row are left as they are.
func (r *postgresPredictionRepository) Upsert(ctx context.Context, exec SQLExecutor, userID, matchID, homeScore, awayScore int) (int, error) {
	query := `
		INSERT INTO predictions (user_id, match_id, predicted_home_score, predicted_away_score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, match_id) DO UPDATE
		SET predicted_home_score = EXCLUDED.predicted_home_score,
		    predicted_away_score = EXCLUDED.predicted_away_score,
		    updated_at = NOW()
		RETURNING id`

	var id int
	err := r.getExecutor(exec).QueryRowContext(ctx, query, userID, matchID, homeScore, awayScore).Scan(&id)
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation:
			return 0, ErrPredictionReferenceInvalid
		case pqCheckViolation:
			return 0, ErrPredictionScoreInvalid
		}
		return 0, fmt.Errorf("failed to upsert prediction for user %d match %d: %w", userID, matchID, err)
	}
	return id, nil
}

func (r *postgresPredictionRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Prediction, error) {
	query := `
		SELECT id, user_id, match_id, predicted_home_score, predicted_away_score,
		       points_earned, scoring_outcome, submitted_at, updated_at
		FROM predictions
		WHERE match_id = $1
		ORDER BY id ASC`

	predictions := make([]models.Prediction, 0)
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &predictions, query, matchID); err != nil {
		return nil, fmt.Errorf("failed to list predictions for match %d: %w", matchID, err)
	}
	return predictions, nil
}

func (r *postgresPredictionRepository) UpdateScore(ctx context.Context, exec SQLExecutor, scored models.ScoredPrediction) error {
	query := `UPDATE predictions SET points_earned = $1, scoring_outcome = $2 WHERE id = $3`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, scored.Points, scored.Outcome, scored.PredictionID)
	if err != nil {
		return fmt.Errorf("failed to update score of prediction %d: %w", scored.PredictionID, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}

const predictionViewQuery = `
	SELECT p.id, p.user_id, p.match_id, p.predicted_home_score, p.predicted_away_score,
	       p.points_earned, p.scoring_outcome, p.submitted_at, p.updated_at,
	       u.display_name,
	       m.match_number, m.stage, m.group_letter, m.match_time, m.venue,
	       m.home_score, m.away_score, m.status, m.placeholder_home, m.placeholder_away,
	       ht.name AS home_team_name, ht.flag_emoji AS home_team_flag,
	       at.name AS away_team_name, at.flag_emoji AS away_team_flag
	FROM predictions p
	JOIN users u ON p.user_id = u.id
	JOIN matches m ON p.match_id = m.id
	LEFT JOIN teams ht ON m.home_team_id = ht.id
	LEFT JOIN teams at ON m.away_team_id = at.id`

func (r *postgresPredictionRepository) ListViewsByUser(ctx context.Context, userID int) ([]models.PredictionView, error) {
	query := predictionViewQuery + ` WHERE p.user_id = $1 ORDER BY m.match_time ASC, m.id ASC`

	views := make([]models.PredictionView, 0)
	if err := sqlx.SelectContext(ctx, r.db, &views, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list predictions of user %d: %w", userID, err)
	}
	return views, nil
}

func (r *postgresPredictionRepository) ListViews(ctx context.Context) ([]models.PredictionView, error) {
	query := predictionViewQuery + ` ORDER BY u.display_name ASC, m.match_time ASC, m.id ASC`

	views := make([]models.PredictionView, 0)
	if err := sqlx.SelectContext(ctx, r.db, &views, query); err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return views, nil
}

func (r *postgresPredictionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return count, nil
}
