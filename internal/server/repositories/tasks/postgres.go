package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (list_id, title, completed)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, task.ListID, task.Title, task.Completed).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) ListByList(ctx context.Context, listID string) ([]*models.Task, error) {
	query :=
		`SELECT id, title, list_id, completed, created_at FROM tasks
		 WHERE list_id = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t := &models.Task{}
		if err := rows.Scan(&t.ID, &t.Title, &t.ListID, &t.Completed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update applies the non-nil fields of patch.
func (r *PostgresRepository) Update(ctx context.Context, listID, id string, patch models.TaskPatch) (*models.Task, error) {
	query :=
		`UPDATE tasks
		 SET title = COALESCE($3::text, title),
		     completed = COALESCE($4::boolean, completed)
		 WHERE id = $1 AND list_id = $2
		 RETURNING id, title, list_id, completed, created_at`

	t := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id, listID, patch.Title, patch.Completed).
		Scan(&t.ID, &t.Title, &t.ListID, &t.Completed, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, listID, id string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND list_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, listID)
	if err != nil {
		if dbx.IsInvalidInput(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteByList(ctx context.Context, listID string) (int64, error) {
	query := `DELETE FROM tasks WHERE list_id = $1`

	res, err := r.db.ExecContext(ctx, query, listID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
