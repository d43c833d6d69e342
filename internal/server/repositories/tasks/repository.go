package tasks

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

// Repository stores tasks. Ownership is checked one level up through the
// parent list; every call here is scoped to a list id.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	ListByList(ctx context.Context, listID string) ([]*models.Task, error)
	Update(ctx context.Context, listID, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, listID, id string) error
	DeleteByList(ctx context.Context, listID string) (int64, error)
}
