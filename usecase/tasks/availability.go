package tasks

import (
	"context"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

// IsAvailable decides whether the profile may open a new instance of the
// task. A live attempt (ACTIVE or PENDING) blocks it; a settled attempt
// blocks it until its repeat cooldown has elapsed. The boundary is
// inclusive: the task becomes available at exactly completion+cooldown.
func (uc *UseCase) IsAvailable(ctx context.Context, task *domain.Task, profileID string) (bool, error) {
	instances, err := uc.instances.List(ctx, repository.InstanceFilter{
		ProfileID: profileID,
		TaskID:    task.ID,
	})
	if err != nil {
		return false, err
	}

	now := uc.now()
	for _, inst := range instances {
		switch inst.Status {
		case domain.StatusActive, domain.StatusPendingApproval:
			return false, nil
		case domain.StatusCompleted, domain.StatusExploded:
			if inst.TimeCompleted == nil {
				// Broken record; treat as blocking rather than crash.
				uc.logger.Warn("settled instance without completion time",
					zap.String("instance_id", inst.ID))
				return false, nil
			}
			if now.Before(inst.TimeCompleted.Add(task.TimeToRepeat)) {
				return false, nil
			}
		}
	}
	return true, nil
}

// AvailableTasks lists every catalog task the profile may currently accept.
func (uc *UseCase) AvailableTasks(ctx context.Context, profileID string) ([]domain.Task, error) {
	all, err := uc.tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, err
	}

	var available []domain.Task
	for i := range all {
		ok, err := uc.IsAvailable(ctx, &all[i], profileID)
		if err != nil {
			return nil, err
		}
		if ok {
			available = append(available, all[i])
		}
	}
	return available, nil
}
