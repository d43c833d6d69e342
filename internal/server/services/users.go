package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 5

// AuthResult is what signup and login hand back to the client.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// UserService handles signup, login, access-token refresh and logout.
type UserService struct {
	repomanager repomanager.RepositoryManager
	issuer      auth.Issuer
	hasher      auth.PasswordHasher
	sessions    SessionManager
	timeout     time.Duration
}

func NewUserService(m repomanager.RepositoryManager, issuer auth.Issuer, hasher auth.PasswordHasher, sessions SessionManager, storeTimeout time.Duration) *UserService {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return &UserService{
		repomanager: m,
		issuer:      issuer,
		hasher:      hasher,
		sessions:    sessions,
		timeout:     storeTimeout,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}
	return nil
}

// Signup creates the user and logs them in.
func (s *UserService) Signup(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", common.ErrorValidation, common.ErrPasswordHash, err)
	}

	user := &models.User{Email: email, PasswordHash: hash}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err = callStoreOnce(ctx, s.timeout, func(ctx context.Context) (*models.User, error) {
		return repo.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("email %q: %w", email, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.startSession(ctx, user)
}

// Login checks the credentials. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := callStore(ctx, s.timeout, func(ctx context.Context) (*models.User, error) {
		return repo.GetByEmail(ctx, email)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, common.ErrorUnauthorized
	}

	return s.startSession(ctx, user)
}

func (s *UserService) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	refreshToken, err := s.sessions.CreateSession(ctx, user)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.issuer.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// IssueAccessToken mints a fresh access token for an already verified user.
func (s *UserService) IssueAccessToken(user *models.User) (string, error) {
	return s.issuer.IssueAccessToken(user.ID)
}

func (s *UserService) Logout(ctx context.Context, userID, refreshToken string) error {
	return s.sessions.RemoveSession(ctx, userID, refreshToken)
}
