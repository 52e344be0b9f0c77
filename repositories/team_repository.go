package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/jmoiron/sqlx"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamRepository is read-only: the team list is seeded by migrations.
type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context, groupLetter *string) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db *sqlx.DB
}

func NewPostgresTeamRepository(db *sqlx.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, iso_code, group_letter, flag_emoji FROM teams WHERE id = $1`

	var team models.Team
	if err := sqlx.GetContext(ctx, r.db, &team, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return &team, nil
}

// List returns teams ordered by group and name, optionally limited to one group.
func (r *postgresTeamRepository) List(ctx context.Context, groupLetter *string) ([]models.Team, error) {
	query := `SELECT id, name, iso_code, group_letter, flag_emoji FROM teams`
	var args []interface{}
	if groupLetter != nil {
		query += ` WHERE group_letter = $1`
		args = append(args, *groupLetter)
	}
	query += ` ORDER BY group_letter ASC NULLS LAST, name ASC`

	teams := make([]models.Team, 0)
	if err := sqlx.SelectContext(ctx, r.db, &teams, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}
