package lists

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

func (r *PostgresRepository) Create(ctx context.Context, list *models.List) (*models.List, error) {
	query :=
		`INSERT INTO lists (user_id, title)
		 VALUES ($1, $2)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, list.UserID, list.Title).Scan(&list.ID, &list.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.List, error) {
	query :=
		`SELECT id, title, user_id, created_at FROM lists
		 WHERE user_id = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.List, 0)
	for rows.Next() {
		l := &models.List{}
		if err := rows.Scan(&l.ID, &l.Title, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.List, error) {
	query :=
		`SELECT id, title, user_id, created_at FROM lists
		 WHERE id = $1 AND user_id = $2`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) UpdateTitle(ctx context.Context, userID, id, title string) (*models.List, error) {
	query :=
		`UPDATE lists SET title = $3
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, title, user_id, created_at`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID, title))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.List, error) {
	l := &models.List{}
	if err := row.Scan(&l.ID, &l.Title, &l.UserID, &l.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM lists WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
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
