package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/jmoiron/sqlx"
)

type LeaderboardRepository interface {
	ListParticipantTotals(ctx context.Context) ([]models.ParticipantTotals, error)
}

type postgresLeaderboardRepository struct {
	db *sqlx.DB
}

func NewPostgresLeaderboardRepository(db *sqlx.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

// ListParticipantTotals sums the persisted scoring of every active
// participant. Ordering is left to the ranking step.
func (r *postgresLeaderboardRepository) ListParticipantTotals(ctx context.Context) ([]models.ParticipantTotals, error) {
	query := `
		SELECT
			u.id AS user_id,
			COALESCE(NULLIF(u.display_name, ''), u.email) AS display_name,
			COALESCE(SUM(p.points_earned), 0) AS total_points,
			COALESCE(SUM(CASE WHEN p.scoring_outcome = 'exact' THEN 1 ELSE 0 END), 0) AS exact_count,
			COALESCE(SUM(CASE WHEN p.scoring_outcome = 'correct' THEN 1 ELSE 0 END), 0) AS correct_count
		FROM users u
		LEFT JOIN predictions p ON u.id = p.user_id
		WHERE u.role = $1 AND u.is_active = TRUE
		GROUP BY u.id`

	totals := make([]models.ParticipantTotals, 0)
	if err := sqlx.SelectContext(ctx, r.db, &totals, query, models.RoleParticipant); err != nil {
		return nil, fmt.Errorf("failed to aggregate participant totals: %w", err)
	}
	return totals, nil
}
