package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
)

// ListService manages the lists and tasks of one user at a time. Every call
// takes the caller's user id and treats lists owned by others as absent.
type ListService struct {
	repomanager repomanager.RepositoryManager
	timeout     time.Duration
}

func NewListService(m repomanager.RepositoryManager, storeTimeout time.Duration) *ListService {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return &ListService{repomanager: m, timeout: storeTimeout}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	return title, nil
}

func (s *ListService) Lists(ctx context.Context, userID string) ([]*models.List, error) {
	repo := s.repomanager.Lists(s.repomanager.Conn())
	return callStore(ctx, s.timeout, func(ctx context.Context) ([]*models.List, error) {
		return repo.ListByUser(ctx, userID)
	})
}

func (s *ListService) CreateList(ctx context.Context, userID, title string) (*models.List, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Lists(s.repomanager.Conn())
	return callStoreOnce(ctx, s.timeout, func(ctx context.Context) (*models.List, error) {
		return repo.Create(ctx, &models.List{Title: title, UserID: userID})
	})
}

func (s *ListService) RenameList(ctx context.Context, userID, listID, title string) (*models.List, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Lists(s.repomanager.Conn())
	return callStore(ctx, s.timeout, func(ctx context.Context) (*models.List, error) {
		return repo.UpdateTitle(ctx, userID, listID, title)
	})
}

// DeleteList removes the list and all of its tasks in one transaction.
func (s *ListService) DeleteList(ctx context.Context, userID, listID string) error {
	return execStoreOnce(ctx, s.timeout, func(ctx context.Context) error {
		return s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			if _, err := s.repomanager.Lists(tx).GetByID(ctx, userID, listID); err != nil {
				return err
			}
			if _, err := s.repomanager.Tasks(tx).DeleteByList(ctx, listID); err != nil {
				return fmt.Errorf("error deleting tasks: %w", err)
			}
			return s.repomanager.Lists(tx).Delete(ctx, userID, listID)
		})
	})
}

// ownedList fails with ErrorNotFound unless userID owns listID.
func (s *ListService) ownedList(ctx context.Context, userID, listID string) error {
	repo := s.repomanager.Lists(s.repomanager.Conn())
	_, err := callStore(ctx, s.timeout, func(ctx context.Context) (*models.List, error) {
		return repo.GetByID(ctx, userID, listID)
	})
	return err
}

func (s *ListService) Tasks(ctx context.Context, userID, listID string) ([]*models.Task, error) {
	if err := s.ownedList(ctx, userID, listID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Tasks(s.repomanager.Conn())
	return callStore(ctx, s.timeout, func(ctx context.Context) ([]*models.Task, error) {
		return repo.ListByList(ctx, listID)
	})
}

func (s *ListService) CreateTask(ctx context.Context, userID, listID, title string) (*models.Task, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if err := s.ownedList(ctx, userID, listID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Tasks(s.repomanager.Conn())
	return callStoreOnce(ctx, s.timeout, func(ctx context.Context) (*models.Task, error) {
		return repo.Create(ctx, &models.Task{Title: title, ListID: listID})
	})
}

func (s *ListService) UpdateTask(ctx context.Context, userID, listID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title != nil {
		title, err := normalizeTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if err := s.ownedList(ctx, userID, listID); err != nil {
		return nil, err
	}

	repo := s.repomanager.Tasks(s.repomanager.Conn())
	return callStore(ctx, s.timeout, func(ctx context.Context) (*models.Task, error) {
		return repo.Update(ctx, listID, taskID, patch)
	})
}

func (s *ListService) DeleteTask(ctx context.Context, userID, listID, taskID string) error {
	if err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}

	repo := s.repomanager.Tasks(s.repomanager.Conn())
	return execStore(ctx, s.timeout, func(ctx context.Context) error {
		return repo.Delete(ctx, listID, taskID)
	})
}
