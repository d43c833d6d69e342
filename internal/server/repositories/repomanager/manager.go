package repomanager

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/lists"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/users"
)

// RepositoryManager owns the storage connection and vends repositories bound
// to either the connection (Conn) or a transaction (WithTx).
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() dbx.DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Ping(ctx context.Context) error
	Close() error
	Users(db dbx.DBTX) users.Repository
	Lists(db dbx.DBTX) lists.Repository
	Tasks(db dbx.DBTX) tasks.Repository
}
