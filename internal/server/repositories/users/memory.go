package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. One mutex guards every
// record, which makes each method atomic.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	if user.Sessions == nil {
		user.Sessions = []models.Session{}
	}

	r.byID[user.ID] = user.Clone()
	r.byEmail[user.Email] = user.ID

	return user, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) AppendSession(ctx context.Context, userID string, session models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.Sessions = append(u.Sessions, session)
	return nil
}

func (r *MemoryRepository) RemoveSession(ctx context.Context, userID string, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}

	kept := u.Sessions[:0]
	for _, s := range u.Sessions {
		if s.Token != token {
			kept = append(kept, s)
		}
	}
	u.Sessions = kept
	return nil
}

func (r *MemoryRepository) DeleteExpiredSessions(ctx context.Context, now int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for _, u := range r.byID {
		kept := u.Sessions[:0]
		for _, s := range u.Sessions {
			if s.ExpiresAt <= now {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		u.Sessions = kept
	}
	return removed, nil
}
