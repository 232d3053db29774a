package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
	"github.com/sustaingain/backend/usecase"
)

// Policy carries the tunables of the lifecycle. All of them come from
// configuration; none are hardcoded here.
type Policy struct {
	// LikeThreshold is the number of distinct peer likes that auto-completes
	// a pending instance.
	LikeThreshold int
	// ApprovalGrace is how long an instance may sit pending before the aging
	// sweep completes it.
	ApprovalGrace time.Duration
	// MaxAssignedActive caps how many active instances a profile may hold
	// before the assignment sweep skips it.
	MaxAssignedActive int
	// BombWarning is the window before a bomb deadline in which the sweep
	// emits an expiring event.
	BombWarning time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.LikeThreshold <= 0 {
		p.LikeThreshold = 3
	}
	if p.ApprovalGrace <= 0 {
		p.ApprovalGrace = 7 * 24 * time.Hour
	}
	if p.MaxAssignedActive <= 0 {
		p.MaxAssignedActive = 5
	}
	if p.BombWarning <= 0 {
		p.BombWarning = 2 * time.Hour
	}
	return p
}

// UseCase drives the task instance lifecycle: acceptance, tagging,
// self-reports, peer moderation and the scheduled sweeps.
type UseCase struct {
	tasks     repository.TaskRepository
	instances repository.InstanceRepository
	profiles  repository.ProfileRepository
	friends   repository.FriendRepository
	notifier  usecase.Notifier
	verifier  usecase.PhotoVerifier
	geocoder  usecase.Geocoder
	policy    Policy
	logger    *zap.Logger

	now func() time.Time
}

func New(
	tasks repository.TaskRepository,
	instances repository.InstanceRepository,
	profiles repository.ProfileRepository,
	friends repository.FriendRepository,
	notifier usecase.Notifier,
	verifier usecase.PhotoVerifier,
	geocoder usecase.Geocoder,
	policy Policy,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		instances: instances,
		profiles:  profiles,
		friends:   friends,
		notifier:  notifier,
		verifier:  verifier,
		geocoder:  geocoder,
		policy:    policy.withDefaults(),
		logger:    logger,
		now:       time.Now,
	}
}

// MyTasks lists every instance belonging to the profile, newest first.
func (uc *UseCase) MyTasks(ctx context.Context, profileID string) ([]domain.TaskInstance, error) {
	return uc.instances.List(ctx, repository.InstanceFilter{ProfileID: profileID})
}

// GetInstance fetches a single instance.
func (uc *UseCase) GetInstance(ctx context.Context, id string) (*domain.TaskInstance, error) {
	return uc.instances.GetByID(ctx, id)
}

func (uc *UseCase) emit(ctx context.Context, event domain.Event) {
	if uc.notifier == nil {
		return
	}
	event.OccurredAt = uc.now()
	if err := uc.notifier.Emit(ctx, event); err != nil {
		uc.logger.Warn("event emission failed",
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}
