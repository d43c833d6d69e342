package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/users"
)

var testSecret = []byte("test-secret")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newIssuer() *auth.JWTIssuer {
	return auth.NewJWTIssuer(testSecret, 15*time.Minute)
}

// fakeUsersRepo wraps a real in-memory repository and lets a test inject
// failures per method. A positive *Fails counter fails that many calls.
type fakeUsersRepo struct {
	*users.MemoryRepository

	createBlocks bool
	createCalls  atomic.Int32

	getByIDErr   error
	getByIDFails atomic.Int32
	getByIDCalls atomic.Int32

	appendErr   error
	appendFails atomic.Int32
	appendCtx   context.Context

	sweepErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{MemoryRepository: users.NewMemoryRepository()}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.createCalls.Add(1)
	if f.createBlocks {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.MemoryRepository.Create(ctx, u)
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.getByIDCalls.Add(1)
	if f.getByIDFails.Add(-1) >= 0 {
		return nil, f.getByIDErr
	}
	return f.MemoryRepository.GetByID(ctx, id)
}

func (f *fakeUsersRepo) AppendSession(ctx context.Context, userID string, s models.Session) error {
	f.appendCtx = ctx
	if f.appendFails.Add(-1) >= 0 {
		return f.appendErr
	}
	return f.MemoryRepository.AppendSession(ctx, userID, s)
}

func (f *fakeUsersRepo) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	if f.sweepErr != nil {
		return 0, f.sweepErr
	}
	return f.MemoryRepository.DeleteExpiredSessions(ctx, now)
}

// fakeRepoManager serves a fakeUsersRepo next to the in-memory lists and
// tasks repositories.
type fakeRepoManager struct {
	*repomanager.InMemoryRepositoryManager
	users *fakeUsersRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		InMemoryRepositoryManager: repomanager.NewInMemoryRepositoryManager(),
		users:                     newFakeUsersRepo(),
	}
}

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return m.users }

func createUser(m *fakeRepoManager, email string) *models.User {
	u, err := m.users.Create(context.Background(), &models.User{Email: email, PasswordHash: "x"})
	if err != nil {
		panic(err)
	}
	return u
}
