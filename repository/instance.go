package repository

import (
	"context"
	"time"

	"github.com/sustaingain/backend/domain"
)

type InstanceFilter struct {
	ProfileID  string
	ProfileIDs []string
	TaskID     string
	Statuses   []domain.InstanceStatus
	// ExcludeActive drops ACTIVE instances; used by the feed.
	ExcludeActive bool
	Limit         int
	Offset        int
}

// InstanceWithTask joins an instance with its catalog task for callers that
// need point values or bomb deadlines without a second round trip.
type InstanceWithTask struct {
	Instance domain.TaskInstance
	Task     domain.Task
}

// InstanceRepository persists task instances. Status transitions go through
// UpdateStatusIf so concurrent writers cannot double-transition a record:
// the update applies only when the stored status still matches expect.
type InstanceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TaskInstance, error)
	List(ctx context.Context, filter InstanceFilter) ([]domain.TaskInstance, error)
	Create(ctx context.Context, instance *domain.TaskInstance) (*domain.TaskInstance, error)
	Delete(ctx context.Context, id string) error

	// UpdateStatusIf performs a compare-and-swap on the status column.
	// Returns a CONFLICT domain error when the stored status differs.
	UpdateStatusIf(ctx context.Context, id string, expect, next domain.InstanceStatus, completedAt *time.Time) error

	// SubmitCompletion applies a self-report: evidence plus the
	// ACTIVE -> next transition in a single guarded write.
	SubmitCompletion(ctx context.Context, id string, next domain.InstanceStatus, completedAt time.Time, photoRef, note, location string) error

	// CreateFromTag consumes the source instance's single outgoing tag and
	// creates the tagged profile's instance in the same transaction, so a
	// failed create never leaves the tag spent. Fails with CONFLICT if the
	// source already tagged someone.
	CreateFromTag(ctx context.Context, sourceID string, instance *domain.TaskInstance) (*domain.TaskInstance, error)

	// AddLike inserts the liker into the like set (idempotent) and returns
	// the resulting set size.
	AddLike(ctx context.Context, instanceID, profileID string) (int, error)

	// AddReport inserts the reporter into the report set (idempotent) and
	// returns the resulting set size.
	AddReport(ctx context.Context, instanceID, profileID string) (int, error)

	// Restore clears all reports and forces the instance to COMPLETED,
	// setting the completion time when the record lacks one.
	Restore(ctx context.Context, id string, completedAt time.Time) error

	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.TaskInstance, error)
	ListActiveBombs(ctx context.Context) ([]InstanceWithTask, error)
	CountActive(ctx context.Context, profileID string) (int, error)

	// SumPoints computes the live ranking aggregate for a profile:
	// completed instances add their task's points, exploded ones subtract.
	SumPoints(ctx context.Context, profileID string) (int, error)
}
