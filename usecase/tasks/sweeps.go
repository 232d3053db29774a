package tasks

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

// RunAgingSweep completes every instance that has sat pending longer than
// the approval grace period. Idempotent: the selection filters on PENDING
// and each transition is a guarded compare-and-swap, so a second run finds
// nothing left to do.
func (uc *UseCase) RunAgingSweep(ctx context.Context) (int, error) {
	cutoff := uc.now().Add(-uc.policy.ApprovalGrace)
	stale, err := uc.instances.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	var swept int
	for _, inst := range stale {
		err := uc.instances.UpdateStatusIf(ctx, inst.ID, domain.StatusPendingApproval, domain.StatusCompleted, nil)
		switch {
		case err == nil:
			swept++
		case domain.IsDomainError(err, domain.ErrCodeConflict):
			// Another actor settled it between selection and commit.
		case domain.IsDomainError(err, domain.ErrCodeNotFound):
			// Deleted by moderation in the meantime.
		default:
			return swept, err
		}
	}
	if swept > 0 {
		uc.logger.Info("aging sweep completed pending instances", zap.Int("count", swept))
	}
	return swept, nil
}

// RunBombSweep explodes every active bomb instance whose deadline has
// passed, and warns owners whose deadline falls inside the warning window.
// The completion time of an exploded instance is its deadline, which keeps
// cooldown computation anchored to the moment the task actually lapsed.
func (uc *UseCase) RunBombSweep(ctx context.Context) (int, error) {
	bombs, err := uc.instances.ListActiveBombs(ctx)
	if err != nil {
		return 0, err
	}

	now := uc.now()
	var exploded int
	for _, pair := range bombs {
		deadline := pair.Task.BombDeadline(pair.Instance.TimeAccepted)
		switch {
		case !now.Before(deadline):
			err := uc.instances.UpdateStatusIf(ctx, pair.Instance.ID, domain.StatusActive, domain.StatusExploded, &deadline)
			switch {
			case err == nil:
				exploded++
			case domain.IsDomainError(err, domain.ErrCodeConflict):
				// Completed in the meantime.
			case domain.IsDomainError(err, domain.ErrCodeNotFound):
			default:
				return exploded, err
			}
		case now.After(deadline.Add(-uc.policy.BombWarning)):
			uc.emit(ctx, domain.Event{
				Type:      domain.EventBombExpiring,
				ProfileID: pair.Instance.ProfileID,
				SubjectID: pair.Instance.ID,
				Message:   pair.Task.Title + " is about to explode!",
			})
		}
	}
	if exploded > 0 {
		uc.logger.Info("bomb sweep exploded instances", zap.Int("count", exploded))
	}
	return exploded, nil
}

// RunAssignmentSweep hands idle profiles a random available task on behalf
// of Sustainable Steve. Profiles at or over the active cap, or with no
// available task, are skipped; re-running cannot exceed the cap, which is
// what makes the job safe to repeat.
func (uc *UseCase) RunAssignmentSweep(ctx context.Context) (int, error) {
	profiles, err := uc.profiles.List(ctx, repository.ProfileFilter{})
	if err != nil {
		return 0, err
	}
	catalog, err := uc.tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return 0, err
	}
	if len(catalog) == 0 {
		return 0, nil
	}

	var assigned int
	for _, profile := range profiles {
		active, err := uc.instances.CountActive(ctx, profile.ID)
		if err != nil {
			return assigned, err
		}
		if active >= uc.policy.MaxAssignedActive {
			continue
		}

		picked := uc.pickAvailable(ctx, catalog, profile.ID)
		if picked == nil {
			continue
		}

		created, err := uc.instances.Create(ctx, &domain.TaskInstance{
			TaskID:        picked.ID,
			ProfileID:     profile.ID,
			Status:        domain.StatusActive,
			OriginMessage: "Sustainable Steve tagged you!",
		})
		if err != nil {
			return assigned, err
		}
		assigned++

		uc.emit(ctx, domain.Event{
			Type:      domain.EventTagReceived,
			ProfileID: profile.ID,
			SubjectID: created.ID,
			Message:   "Sustainable Steve tagged you in " + picked.Title,
		})
	}
	if assigned > 0 {
		uc.logger.Info("assignment sweep created instances", zap.Int("count", assigned))
	}
	return assigned, nil
}

func (uc *UseCase) pickAvailable(ctx context.Context, catalog []domain.Task, profileID string) *domain.Task {
	order := rand.Perm(len(catalog))
	for _, idx := range order {
		task := catalog[idx]
		ok, err := uc.IsAvailable(ctx, &task, profileID)
		if err != nil {
			uc.logger.Warn("availability check failed during assignment",
				zap.String("task_id", task.ID), zap.Error(err))
			continue
		}
		if ok {
			return &task
		}
	}
	return nil
}
