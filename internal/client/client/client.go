package client

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/client/models"
)

type Client interface {
	Signup(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	LoggedIn() bool
	Ping(ctx context.Context) error

	Lists(ctx context.Context) ([]*models.List, error)
	CreateList(ctx context.Context, title string) (*models.List, error)
	DeleteList(ctx context.Context, listID string) error
	Tasks(ctx context.Context, listID string) ([]*models.Task, error)
	CreateTask(ctx context.Context, listID, title string) (*models.Task, error)
	CompleteTask(ctx context.Context, listID, taskID string, completed bool) (*models.Task, error)
}
