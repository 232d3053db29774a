package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

// UseCase maintains the task catalog: the reusable templates gamekeepers
// curate and the categories grouping them. Mutations require a staff
// profile; reads are open to everyone.
type UseCase struct {
	tasks      repository.TaskRepository
	categories repository.CategoryRepository
	profiles   repository.ProfileRepository
	logger     *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	categories repository.CategoryRepository,
	profiles repository.ProfileRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:      tasks,
		categories: categories,
		profiles:   profiles,
		logger:     logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, actorID string, task *domain.Task) (*domain.Task, error) {
	if err := uc.requireStaff(ctx, actorID); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.categories.GetByID(ctx, task.CategoryID); err != nil {
		return nil, err
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("task created", zap.String("task_id", created.ID), zap.String("title", created.Title))
	return created, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, actorID string, task *domain.Task) (*domain.Task, error) {
	if err := uc.requireStaff(ctx, actorID); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.categories.GetByID(ctx, task.CategoryID); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, actorID, id string) error {
	if err := uc.requireStaff(ctx, actorID); err != nil {
		return err
	}
	return uc.tasks.Delete(ctx, id)
}

func (uc *UseCase) ListCategories(ctx context.Context) ([]domain.TaskCategory, error) {
	return uc.categories.List(ctx)
}

func (uc *UseCase) CreateCategory(ctx context.Context, actorID string, category *domain.TaskCategory) (*domain.TaskCategory, error) {
	if err := uc.requireStaff(ctx, actorID); err != nil {
		return nil, err
	}
	if category == nil || category.Name == "" {
		return nil, domain.Validationf("category name is required")
	}
	return uc.categories.Create(ctx, category)
}

// DeleteCategory removes a category; the repository refuses while tasks
// still reference it.
func (uc *UseCase) DeleteCategory(ctx context.Context, actorID, id string) error {
	if err := uc.requireStaff(ctx, actorID); err != nil {
		return err
	}
	if err := uc.categories.Delete(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeProtected) {
			uc.logger.Warn("category delete blocked", zap.String("category_id", id))
		}
		return err
	}
	return nil
}

func (uc *UseCase) requireStaff(ctx context.Context, profileID string) error {
	profile, err := uc.profiles.GetByID(ctx, profileID)
	if err != nil {
		return err
	}
	if !profile.IsStaff() {
		return domain.NewError(domain.ErrCodeForbidden, "staff role required")
	}
	return nil
}
