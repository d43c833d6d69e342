package users

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

// Repository is the credential store. AppendSession and RemoveSession are
// single atomic updates of one user's session list.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AppendSession(ctx context.Context, userID string, session models.Session) error
	RemoveSession(ctx context.Context, userID string, token string) error
	// DeleteExpiredSessions drops every session with ExpiresAt <= now across
	// all users and returns how many were removed.
	DeleteExpiredSessions(ctx context.Context, now int64) (int64, error)
}
