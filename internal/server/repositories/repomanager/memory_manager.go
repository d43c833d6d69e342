package repomanager

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/lists"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves the process-local repositories. The DBTX
// arguments are ignored and there is no connection, so Conn returns nil.
// WithTx runs fn directly: each repository call is atomic on its own, but a
// failing fn does not undo earlier calls.
type InMemoryRepositoryManager struct {
	users *users.MemoryRepository
	lists *lists.MemoryRepository
	tasks *tasks.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users: users.NewMemoryRepository(),
		lists: lists.NewMemoryRepository(),
		tasks: tasks.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *InMemoryRepositoryManager) Conn() dbx.DBTX                         { return nil }
func (m *InMemoryRepositoryManager) Ping(ctx context.Context) error         { return nil }
func (m *InMemoryRepositoryManager) Close() error                           { return nil }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }
func (m *InMemoryRepositoryManager) Lists(dbx.DBTX) lists.Repository { return m.lists }
func (m *InMemoryRepositoryManager) Tasks(dbx.DBTX) tasks.Repository { return m.tasks }
