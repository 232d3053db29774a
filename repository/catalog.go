package repository

import (
	"context"

	"github.com/sustaingain/backend/domain"
)

type TaskFilter struct {
	CategoryID string
	Rarity     domain.Rarity
	Limit      int
	Offset     int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	// Delete fails with domain.ErrTaskInUse while instances reference the task.
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TaskCategory, error)
	List(ctx context.Context) ([]domain.TaskCategory, error)
	Create(ctx context.Context, category *domain.TaskCategory) (*domain.TaskCategory, error)
	// Delete fails with domain.ErrCategoryInUse while tasks reference the category.
	Delete(ctx context.Context, id string) error
}
