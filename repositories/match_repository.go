package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchResultInvalid = errors.New("match result violates a constraint")
)

const matchColumns = `m.id, m.match_number, m.stage, m.group_letter, m.home_team_id, m.away_team_id,
	m.match_time, m.venue, m.home_score, m.away_score, m.status, m.placeholder_home, m.placeholder_away`

const matchViewColumns = matchColumns + `,
	ht.name AS home_team_name, ht.iso_code AS home_team_iso, ht.flag_emoji AS home_team_flag,
	at.name AS away_team_name, at.iso_code AS away_team_iso, at.flag_emoji AS away_team_flag`

type MatchRepository interface {
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByIDsForShare(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Match, error)
	ListCompleted(ctx context.Context, exec SQLExecutor) ([]*models.Match, error)
	SetResult(ctx context.Context, exec SQLExecutor, id, homeScore, awayScore int) error
	GetView(ctx context.Context, id int) (*models.MatchView, error)
	ListViews(ctx context.Context, stage *string) ([]models.MatchView, error)
	CountByStatus(ctx context.Context) (map[models.MatchStatus]int, error)
}

type postgresMatchRepository struct {
	db *sqlx.DB
}

func NewPostgresMatchRepository(db *sqlx.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// GetByIDForUpdate locks the match row until the surrounding transaction ends.
// Scoring writers from other processes wait on this lock.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.id = $1 FOR UPDATE`

	var match models.Match
	if err := sqlx.GetContext(ctx, r.getExecutor(exec), &match, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return &match, nil
}

// ListByIDsForShare reads the matches under a shared row lock, so a result
// cannot be recorded for them before the transaction ends.
func (r *postgresMatchRepository) ListByIDsForShare(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Match, error) {
	result := make(map[int]*models.Match, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.id = ANY($1) ORDER BY m.id FOR SHARE`

	var matches []models.Match
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &matches, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list matches by ids: %w", err)
	}
	for i := range matches {
		result[matches[i].ID] = &matches[i]
	}
	return result, nil
}

func (r *postgresMatchRepository) ListCompleted(ctx context.Context, exec SQLExecutor) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches m
		WHERE m.status = $1 AND m.home_score IS NOT NULL AND m.away_score IS NOT NULL
		ORDER BY m.match_time ASC, m.id ASC`

	var matches []*models.Match
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &matches, query, models.MatchStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to list completed matches: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) SetResult(ctx context.Context, exec SQLExecutor, id, homeScore, awayScore int) error {
	query := `UPDATE matches SET home_score = $1, away_score = $2, status = $3 WHERE id = $4`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, homeScore, awayScore, models.MatchStatusCompleted, id)
	if err != nil {
		if pqCode(err) == pqCheckViolation {
			return ErrMatchResultInvalid
		}
		return fmt.Errorf("failed to set result for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) GetView(ctx context.Context, id int) (*models.MatchView, error) {
	query := `SELECT ` + matchViewColumns + `
		FROM matches m
		LEFT JOIN teams ht ON m.home_team_id = ht.id
		LEFT JOIN teams at ON m.away_team_id = at.id
		WHERE m.id = $1`

	var view models.MatchView
	if err := sqlx.GetContext(ctx, r.db, &view, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match view %d: %w", id, err)
	}
	return &view, nil
}

func (r *postgresMatchRepository) ListViews(ctx context.Context, stage *string) ([]models.MatchView, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchViewColumns + `
		FROM matches m
		LEFT JOIN teams ht ON m.home_team_id = ht.id
		LEFT JOIN teams at ON m.away_team_id = at.id`)

	args := []interface{}{}
	placeholderIndex := 1
	if stage != nil {
		queryBuilder.WriteString(" WHERE m.stage = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *stage)
	}
	queryBuilder.WriteString(" ORDER BY m.match_time ASC, m.id ASC")

	views := make([]models.MatchView, 0)
	if err := sqlx.SelectContext(ctx, r.db, &views, queryBuilder.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return views, nil
}

func (r *postgresMatchRepository) CountByStatus(ctx context.Context) (map[models.MatchStatus]int, error) {
	query := `SELECT status, COUNT(*) AS total FROM matches GROUP BY status`

	var rows []struct {
		Status models.MatchStatus `db:"status"`
		Total  int                `db:"total"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count matches by status: %w", err)
	}

	counts := make(map[models.MatchStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
