package lists

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
)

// Repository stores todo lists. Every read and write except Create is scoped
// to the owning user; a list owned by somebody else is reported as not found.
type Repository interface {
	Create(ctx context.Context, list *models.List) (*models.List, error)
	ListByUser(ctx context.Context, userID string) ([]*models.List, error)
	GetByID(ctx context.Context, userID, id string) (*models.List, error)
	UpdateTitle(ctx context.Context, userID, id, title string) (*models.List, error)
	Delete(ctx context.Context, userID, id string) error
}
