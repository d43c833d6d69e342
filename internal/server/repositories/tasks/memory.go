package tasks

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
	tasks []*models.Task
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task.ID = uuid.NewString()
	task.CreatedAt = time.Now().UTC()

	c := *task
	r.tasks = append(r.tasks, &c)

	return task, nil
}

func (r *MemoryRepository) ListByList(ctx context.Context, listID string) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.Task, 0)
	for _, t := range r.tasks {
		if t.ListID == listID {
			c := *t
			result = append(result, &c)
		}
	}
	return result, nil
}

func (r *MemoryRepository) find(listID, id string) int {
	return slices.IndexFunc(r.tasks, func(t *models.Task) bool {
		return t.ID == id && t.ListID == listID
	})
}

func (r *MemoryRepository) Update(ctx context.Context, listID, id string, patch models.TaskPatch) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(listID, id)
	if i < 0 {
		return nil, common.ErrorNotFound
	}

	t := r.tasks[i]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}

	c := *t
	return &c, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, listID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(listID, id)
	if i < 0 {
		return common.ErrorNotFound
	}
	r.tasks = slices.Delete(r.tasks, i, i+1)
	return nil
}

func (r *MemoryRepository) DeleteByList(ctx context.Context, listID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.tasks)
	r.tasks = slices.DeleteFunc(r.tasks, func(t *models.Task) bool { return t.ListID == listID })
	return int64(before - len(r.tasks)), nil
}
