// Package services contains the server-side business logic: sessions, users,
// lists and tasks, and the expired-session sweeper.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
)

// DefaultSessionTTL is the refresh-token session lifetime.
const DefaultSessionTTL = 10 * 24 * time.Hour

// SessionManager creates, validates and removes refresh-token sessions.
type SessionManager interface {
	CreateSession(ctx context.Context, user *models.User) (string, error)
	ValidateSession(ctx context.Context, userID, refreshToken string) (*models.User, error)
	RemoveSession(ctx context.Context, userID, refreshToken string) error
}

type SessionService struct {
	repomanager repomanager.RepositoryManager
	issuer      auth.Issuer
	ttl         time.Duration
	timeout     time.Duration
	now         func() time.Time
	metrics     *metrics.Metrics
	logger      logging.Logger
}

type SessionOption func(*SessionService)

func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

func WithSessionMetrics(m *metrics.Metrics) SessionOption {
	return func(s *SessionService) { s.metrics = m }
}

func WithSessionLogger(l logging.Logger) SessionOption {
	return func(s *SessionService) { s.logger = l }
}

// WithStoreTimeout bounds every store call; non-positive values keep the default.
func WithStoreTimeout(d time.Duration) SessionOption {
	return func(s *SessionService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewSessionService(m repomanager.RepositoryManager, issuer auth.Issuer, ttl time.Duration, opts ...SessionOption) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &SessionService{
		repomanager: m,
		issuer:      issuer,
		ttl:         ttl,
		timeout:     DefaultStoreTimeout,
		now:         time.Now,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession appends a new session to the user and returns its refresh
// token. The append is not cancelled when ctx is.
func (s *SessionService) CreateSession(ctx context.Context, user *models.User) (string, error) {
	ctx = context.WithoutCancel(ctx)

	token, err := s.issuer.IssueRefreshToken()
	if err != nil {
		return "", err
	}

	session := models.Session{
		Token:     token,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	err = execStore(ctx, s.timeout, func(ctx context.Context) error {
		return repo.AppendSession(ctx, user.ID, session)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrUserNotFound
		}
		return "", fmt.Errorf("error appending session: %w", err)
	}

	s.metrics.SessionCreated()
	s.logger.Debug(ctx, "session created", "user_id", user.ID, "expires_at", session.ExpiresAt)

	return token, nil
}

// ValidateSession returns the user owning refreshToken when the session
// exists and has not expired.
func (s *SessionService) ValidateSession(ctx context.Context, userID, refreshToken string) (*models.User, error) {
	if userID == "" {
		return nil, common.ErrUserNotFound
	}
	if refreshToken == "" {
		return nil, common.ErrSessionNotFound
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := callStore(ctx, s.timeout, func(ctx context.Context) (*models.User, error) {
		return repo.GetByID(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	session, ok := user.FindSession(refreshToken)
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		return nil, common.ErrSessionExpired
	}

	return user, nil
}

// RemoveSession deletes one session of the user.
func (s *SessionService) RemoveSession(ctx context.Context, userID, refreshToken string) error {
	repo := s.repomanager.Users(s.repomanager.Conn())
	err := execStore(ctx, s.timeout, func(ctx context.Context) error {
		return repo.RemoveSession(ctx, userID, refreshToken)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrSessionNotFound
		}
		return fmt.Errorf("error removing session: %w", err)
	}
	return nil
}
