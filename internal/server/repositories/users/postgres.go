package users

import (
	"context"
	"database/sql"
	"encoding/json"
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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	sessions, err := encodeSessions(user.Sessions)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO users (email, password_hash, sessions)
		 VALUES ($1, $2, $3::jsonb)
		 RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, sessions).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, email, password_hash, sessions, created_at FROM users
		 WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, password_hash, sessions, created_at FROM users
		 WHERE email = $1`

	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	var sessions []byte

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &sessions, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(sessions, &user.Sessions); err != nil {
		return nil, fmt.Errorf("decoding sessions of user %s: %w", user.ID, err)
	}

	return user, nil
}

// AppendSession concatenates the session onto the stored array in one
// statement, so concurrent logins of the same user cannot overwrite each other.
func (r *PostgresRepository) AppendSession(ctx context.Context, userID string, session models.Session) error {
	query :=
		`UPDATE users
		 SET sessions = sessions || jsonb_build_array(jsonb_build_object('token', $2::text, 'expiresAt', $3::bigint))
		 WHERE id = $1`

	return r.execOne(ctx, query, userID, session.Token, session.ExpiresAt)
}

func (r *PostgresRepository) RemoveSession(ctx context.Context, userID string, token string) error {
	query :=
		`UPDATE users
		 SET sessions = COALESCE(
		     (SELECT jsonb_agg(s.value ORDER BY s.ord)
		      FROM jsonb_array_elements(sessions) WITH ORDINALITY AS s(value, ord)
		      WHERE s.value->>'token' <> $2),
		     '[]'::jsonb)
		 WHERE id = $1`

	return r.execOne(ctx, query, userID, token)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	query :=
		`WITH expired AS (
		     SELECT id,
		            (SELECT count(*) FROM jsonb_array_elements(sessions) AS s
		             WHERE (s->>'expiresAt')::bigint <= $1) AS n
		     FROM users
		     WHERE EXISTS (SELECT 1 FROM jsonb_array_elements(sessions) AS s
		                   WHERE (s->>'expiresAt')::bigint <= $1)
		     FOR UPDATE
		 ), pruned AS (
		     UPDATE users u
		     SET sessions = COALESCE(
		         (SELECT jsonb_agg(s.value ORDER BY s.ord)
		          FROM jsonb_array_elements(u.sessions) WITH ORDINALITY AS s(value, ord)
		          WHERE (s.value->>'expiresAt')::bigint > $1),
		         '[]'::jsonb)
		     FROM expired e
		     WHERE u.id = e.id
		     RETURNING e.n
		 )
		 SELECT COALESCE(sum(n), 0)::bigint FROM pruned`

	var removed int64
	if err := r.db.QueryRowContext(ctx, query, now).Scan(&removed); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return removed, nil
}

func encodeSessions(sessions []models.Session) (string, error) {
	if sessions == nil {
		sessions = []models.Session{}
	}
	b, err := json.Marshal(sessions)
	if err != nil {
		return "", fmt.Errorf("encoding sessions: %w", err)
	}
	return string(b), nil
}
