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
)

var ErrDeadlineNotFound = errors.New("deadline not found")

type DeadlineRepository interface {
	GetByStage(ctx context.Context, exec SQLExecutor, stage string) (*models.Deadline, error)
	List(ctx context.Context, exec SQLExecutor) ([]models.Deadline, error)
	Update(ctx context.Context, exec SQLExecutor, stage string, update models.DeadlineUpdate) (*models.Deadline, error)
}

type postgresDeadlineRepository struct {
	db *sqlx.DB
}

func NewPostgresDeadlineRepository(db *sqlx.DB) DeadlineRepository {
	return &postgresDeadlineRepository{db: db}
}

func (r *postgresDeadlineRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresDeadlineRepository) GetByStage(ctx context.Context, exec SQLExecutor, stage string) (*models.Deadline, error) {
	query := `SELECT id, stage, deadline_at, is_locked FROM deadlines WHERE stage = $1`

	var d models.Deadline
	if err := sqlx.GetContext(ctx, r.getExecutor(exec), &d, query, stage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeadlineNotFound
		}
		return nil, fmt.Errorf("failed to get deadline for stage %q: %w", stage, err)
	}
	return &d, nil
}

func (r *postgresDeadlineRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Deadline, error) {
	query := `SELECT id, stage, deadline_at, is_locked FROM deadlines ORDER BY id ASC`

	deadlines := make([]models.Deadline, 0)
	if err := sqlx.SelectContext(ctx, r.getExecutor(exec), &deadlines, query); err != nil {
		return nil, fmt.Errorf("failed to list deadlines: %w", err)
	}
	return deadlines, nil
}

// Update applies the non-nil fields of update to the stage's deadline.
func (r *postgresDeadlineRepository) Update(ctx context.Context, exec SQLExecutor, stage string, update models.DeadlineUpdate) (*models.Deadline, error) {
	if update.IsEmpty() {
		return nil, errors.New("deadline update has no fields")
	}

	var setClauses []string
	args := []interface{}{}
	placeholderIndex := 1

	if update.DeadlineAt != nil {
		setClauses = append(setClauses, "deadline_at = $"+strconv.Itoa(placeholderIndex))
		args = append(args, *update.DeadlineAt)
		placeholderIndex++
	}
	if update.IsLocked != nil {
		setClauses = append(setClauses, "is_locked = $"+strconv.Itoa(placeholderIndex))
		args = append(args, *update.IsLocked)
		placeholderIndex++
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString("UPDATE deadlines SET ")
	queryBuilder.WriteString(strings.Join(setClauses, ", "))
	queryBuilder.WriteString(" WHERE stage = $")
	queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
	queryBuilder.WriteString(" RETURNING id, stage, deadline_at, is_locked")
	args = append(args, stage)

	var d models.Deadline
	if err := sqlx.GetContext(ctx, r.getExecutor(exec), &d, queryBuilder.String(), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeadlineNotFound
		}
		return nil, fmt.Errorf("failed to update deadline for stage %q: %w", stage, err)
	}
	return &d, nil
}
