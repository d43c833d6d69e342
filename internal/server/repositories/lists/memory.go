package lists

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu    sync.Mutex
	lists []*models.List
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, list *models.List) (*models.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list.ID = uuid.NewString()
	list.CreatedAt = time.Now().UTC()

	c := *list
	r.lists = append(r.lists, &c)

	return list, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.List, 0)
	for _, l := range r.lists {
		if l.UserID == userID {
			c := *l
			result = append(result, &c)
		}
	}
	return result, nil
}

func (r *MemoryRepository) find(userID, id string) int {
	return slices.IndexFunc(r.lists, func(l *models.List) bool {
		return l.ID == id && l.UserID == userID
	})
}

func (r *MemoryRepository) GetByID(ctx context.Context, userID, id string) (*models.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(userID, id)
	if i < 0 {
		return nil, common.ErrorNotFound
	}
	c := *r.lists[i]
	return &c, nil
}

func (r *MemoryRepository) UpdateTitle(ctx context.Context, userID, id, title string) (*models.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(userID, id)
	if i < 0 {
		return nil, common.ErrorNotFound
	}
	r.lists[i].Title = title
	c := *r.lists[i]
	return &c, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(userID, id)
	if i < 0 {
		return common.ErrorNotFound
	}
	r.lists = slices.Delete(r.lists, i, i+1)
	return nil
}
