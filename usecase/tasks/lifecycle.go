package tasks

import (
	"context"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
)

// Accept opens a new ACTIVE instance of the task for the profile, provided
// the availability engine allows it.
func (uc *UseCase) Accept(ctx context.Context, taskID, profileID string) (*domain.TaskInstance, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	ok, err := uc.IsAvailable(ctx, task, profileID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.StateConflictf("task %q is not available right now", task.Title)
	}

	instance := &domain.TaskInstance{
		TaskID:        task.ID,
		ProfileID:     profileID,
		Status:        domain.StatusActive,
		OriginMessage: "You accepted this task",
	}
	return uc.instances.Create(ctx, instance)
}

// TagResult tells the caller whether the tag produced an instance. An
// ineligible target is informational, not an error.
type TagResult struct {
	Created  bool                 `json:"created"`
	Message  string               `json:"message"`
	Instance *domain.TaskInstance `json:"instance,omitempty"`
}

// Tag passes the instance's task on to a friend. Each instance may tag at
// most once; the target must be an accepted friend with the task available.
func (uc *UseCase) Tag(ctx context.Context, instanceID, actorID, targetUsername string) (*TagResult, error) {
	instance, err := uc.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance.ProfileID != actorID {
		return nil, domain.NewError(domain.ErrCodeForbidden, "only the owner can tag from an instance")
	}
	if instance.Tagged {
		return nil, domain.StateConflictf("this instance already tagged someone")
	}

	target, err := uc.profiles.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, domain.Validationf("you cannot tag yourself")
	}

	edge, err := uc.friends.GetBetween(ctx, actorID, target.ID)
	if err != nil || edge.Status != domain.FriendAccepted {
		return nil, domain.NewError(domain.ErrCodeForbidden, "you can only tag friends")
	}

	task, err := uc.tasks.GetByID(ctx, instance.TaskID)
	if err != nil {
		return nil, err
	}
	ok, err := uc.IsAvailable(ctx, task, target.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &TagResult{
			Created: false,
			Message: target.Username + " is already doing that task",
		}, nil
	}

	actor, err := uc.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	created, err := uc.instances.CreateFromTag(ctx, instance.ID, &domain.TaskInstance{
		TaskID:        task.ID,
		ProfileID:     target.ID,
		Status:        domain.StatusActive,
		OriginMessage: actor.Username + " tagged you!",
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, domain.Event{
		Type:      domain.EventTagReceived,
		ProfileID: target.ID,
		ActorID:   actorID,
		SubjectID: created.ID,
		Message:   actor.Username + " tagged you in " + task.Title,
	})

	return &TagResult{
		Created:  true,
		Message:  "Tagged " + target.Username + " in " + task.Title,
		Instance: created,
	}, nil
}

// CompletionInput carries the self-report evidence.
type CompletionInput struct {
	PhotoRef string
	Note     string
	Lat, Lon *float64
}

// Complete is the owner's self-report. The instance moves ACTIVE -> PENDING,
// or straight to COMPLETED when the photo verifier recognises the evidence.
func (uc *UseCase) Complete(ctx context.Context, instanceID, actorID string, input CompletionInput) (*domain.TaskInstance, error) {
	instance, err := uc.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance.ProfileID != actorID {
		return nil, domain.NewError(domain.ErrCodeForbidden, "only the owner can complete this task")
	}
	if instance.Status != domain.StatusActive {
		return nil, domain.StateConflictf("instance is %s, expected %s", instance.Status, domain.StatusActive)
	}
	if input.PhotoRef == "" {
		return nil, domain.Validationf("photo evidence is required")
	}

	task, err := uc.tasks.GetByID(ctx, instance.TaskID)
	if err != nil {
		return nil, err
	}

	next := domain.StatusPendingApproval
	if uc.verifier != nil {
		label, approved, err := uc.verifier.Classify(ctx, input.PhotoRef, task.Title, task.CategoryID)
		if err != nil {
			uc.logger.Warn("photo verification unavailable", zap.Error(err))
		} else if approved {
			uc.logger.Info("photo auto-approved",
				zap.String("instance_id", instance.ID),
				zap.String("label", label))
			next = domain.StatusCompleted
		}
	}

	location := ""
	if input.Lat != nil && input.Lon != nil && uc.geocoder != nil {
		loc, err := uc.geocoder.Reverse(ctx, *input.Lat, *input.Lon)
		if err != nil {
			uc.logger.Warn("reverse geocoding failed", zap.Error(err))
		} else {
			location = loc
		}
	}

	completedAt := uc.now()
	if err := uc.instances.SubmitCompletion(ctx, instance.ID, next, completedAt, input.PhotoRef, input.Note, location); err != nil {
		return nil, err
	}
	return uc.instances.GetByID(ctx, instance.ID)
}

// Like adds the profile to the instance's like set. Reaching the policy
// threshold promotes a pending instance to COMPLETED; likes past the
// threshold are accepted but transition nothing.
func (uc *UseCase) Like(ctx context.Context, instanceID, profileID string) (*domain.TaskInstance, error) {
	instance, err := uc.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance.ProfileID == profileID {
		return nil, domain.NewError(domain.ErrCodeForbidden, "you cannot like your own task")
	}
	if instance.Status == domain.StatusActive {
		return nil, domain.StateConflictf("cannot like a task that has not been handed in")
	}

	count, err := uc.instances.AddLike(ctx, instanceID, profileID)
	if err != nil {
		return nil, err
	}

	if count >= uc.policy.LikeThreshold {
		err := uc.instances.UpdateStatusIf(ctx, instanceID, domain.StatusPendingApproval, domain.StatusCompleted, nil)
		switch {
		case err == nil:
			uc.logger.Info("instance approved by peers",
				zap.String("instance_id", instanceID),
				zap.Int("likes", count))
		case domain.IsDomainError(err, domain.ErrCodeConflict):
			// Already settled; the extra like is a no-op.
		default:
			return nil, err
		}
	}
	return uc.instances.GetByID(ctx, instanceID)
}

// Report adds the profile to the instance's report set for later staff
// review. Reports accumulate; they trigger no automatic transition.
func (uc *UseCase) Report(ctx context.Context, instanceID, profileID string) (*domain.TaskInstance, error) {
	instance, err := uc.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance.ProfileID == profileID {
		return nil, domain.NewError(domain.ErrCodeForbidden, "you cannot report your own task")
	}

	count, err := uc.instances.AddReport(ctx, instanceID, profileID)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("instance reported",
		zap.String("instance_id", instanceID),
		zap.Int("reports", count))
	return uc.instances.GetByID(ctx, instanceID)
}

// ModerateDelete permanently removes a reported instance. Staff only.
func (uc *UseCase) ModerateDelete(ctx context.Context, instanceID, actorID string) error {
	if err := uc.requireStaff(ctx, actorID); err != nil {
		return err
	}
	return uc.instances.Delete(ctx, instanceID)
}

// ModerateRestore clears an instance's reports and forces it COMPLETED.
// Staff only.
func (uc *UseCase) ModerateRestore(ctx context.Context, instanceID, actorID string) error {
	if err := uc.requireStaff(ctx, actorID); err != nil {
		return err
	}
	return uc.instances.Restore(ctx, instanceID, uc.now())
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
