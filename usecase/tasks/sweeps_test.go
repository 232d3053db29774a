package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

func TestAgingSweepCompletesStalePending(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	var gotCutoff time.Time
	var transitions []string
	instances := &mockInstanceRepo{
		ListPendingOlderThanFunc: func(_ context.Context, cutoff time.Time) ([]domain.TaskInstance, error) {
			gotCutoff = cutoff
			return []domain.TaskInstance{
				{ID: "old1", Status: domain.StatusPendingApproval},
				{ID: "old2", Status: domain.StatusPendingApproval},
			}, nil
		},
		UpdateStatusIfFunc: func(_ context.Context, id string, expect, next domain.InstanceStatus, completedAt *time.Time) error {
			if expect != domain.StatusPendingApproval || next != domain.StatusCompleted {
				t.Fatalf("unexpected transition %s -> %s", expect, next)
			}
			if completedAt != nil {
				t.Fatal("aging must keep the original completion time")
			}
			transitions = append(transitions, id)
			return nil
		},
	}
	uc := New(nil, instances, nil, nil, nil, nil, nil, Policy{ApprovalGrace: 7 * 24 * time.Hour}, nil)
	uc.now = func() time.Time { return now }

	swept, err := uc.RunAgingSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swept != 2 {
		t.Fatalf("expected 2 swept, got %d", swept)
	}
	if want := now.Add(-7 * 24 * time.Hour); !gotCutoff.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, gotCutoff)
	}
	if len(transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %v", transitions)
	}
}

func TestAgingSweepIgnoresRacedInstances(t *testing.T) {
	instances := &mockInstanceRepo{
		ListPendingOlderThanFunc: func(_ context.Context, _ time.Time) ([]domain.TaskInstance, error) {
			return []domain.TaskInstance{
				{ID: "raced", Status: domain.StatusPendingApproval},
				{ID: "ok", Status: domain.StatusPendingApproval},
			}, nil
		},
		UpdateStatusIfFunc: func(_ context.Context, id string, _, _ domain.InstanceStatus, _ *time.Time) error {
			if id == "raced" {
				return domain.StateConflictf("instance is COMPLETED, expected PENDING")
			}
			return nil
		},
	}
	uc := New(nil, instances, nil, nil, nil, nil, nil, Policy{}, nil)

	swept, err := uc.RunAgingSweep(context.Background())
	if err != nil {
		t.Fatalf("a raced transition must not fail the sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept, got %d", swept)
	}
}

func TestAgingSweepEmptyIsNoOp(t *testing.T) {
	instances := &mockInstanceRepo{
		ListPendingOlderThanFunc: func(_ context.Context, _ time.Time) ([]domain.TaskInstance, error) {
			return nil, nil
		},
	}
	uc := New(nil, instances, nil, nil, nil, nil, nil, Policy{}, nil)

	swept, err := uc.RunAgingSweep(context.Background())
	if err != nil || swept != 0 {
		t.Fatalf("expected clean no-op, got swept=%d err=%v", swept, err)
	}
}

func TestBombSweepExplodesPastDeadline(t *testing.T) {
	accepted := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	task := domain.Task{ID: "t1", Title: "Cold shower", IsBomb: true, BombTimeLimit: time.Hour}
	deadline := task.BombDeadline(accepted)

	var gotCompletedAt *time.Time
	instances := &mockInstanceRepo{
		ListActiveBombsFunc: func(_ context.Context) ([]repository.InstanceWithTask, error) {
			return []repository.InstanceWithTask{{
				Instance: domain.TaskInstance{ID: "i1", TaskID: "t1", ProfileID: "alice", TimeAccepted: accepted, Status: domain.StatusActive},
				Task:     task,
			}}, nil
		},
		UpdateStatusIfFunc: func(_ context.Context, _ string, expect, next domain.InstanceStatus, completedAt *time.Time) error {
			if expect != domain.StatusActive || next != domain.StatusExploded {
				t.Fatalf("unexpected transition %s -> %s", expect, next)
			}
			gotCompletedAt = completedAt
			return nil
		},
	}
	uc := New(nil, instances, nil, nil, nil, nil, nil, Policy{}, nil)
	uc.now = func() time.Time { return deadline.Add(time.Minute) }

	exploded, err := uc.RunBombSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exploded != 1 {
		t.Fatalf("expected 1 exploded, got %d", exploded)
	}
	if gotCompletedAt == nil || !gotCompletedAt.Equal(deadline) {
		t.Fatalf("explosion must be timestamped at the deadline, got %v", gotCompletedAt)
	}
}

func TestBombSweepWarnsInsideWindow(t *testing.T) {
	accepted := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	task := domain.Task{ID: "t1", Title: "Cold shower", IsBomb: true, BombTimeLimit: 4 * time.Hour}
	deadline := task.BombDeadline(accepted)

	instances := &mockInstanceRepo{
		ListActiveBombsFunc: func(_ context.Context) ([]repository.InstanceWithTask, error) {
			return []repository.InstanceWithTask{{
				Instance: domain.TaskInstance{ID: "i1", TaskID: "t1", ProfileID: "alice", TimeAccepted: accepted, Status: domain.StatusActive},
				Task:     task,
			}}, nil
		},
		UpdateStatusIfFunc: func(_ context.Context, _ string, _, _ domain.InstanceStatus, _ *time.Time) error {
			t.Fatal("a bomb inside the warning window must not explode")
			return nil
		},
	}
	notifier := &mockNotifier{}
	uc := New(nil, instances, nil, nil, notifier, nil, nil, Policy{BombWarning: 2 * time.Hour}, nil)
	uc.now = func() time.Time { return deadline.Add(-time.Hour) }

	exploded, err := uc.RunBombSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exploded != 0 {
		t.Fatalf("expected no explosions, got %d", exploded)
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != domain.EventBombExpiring {
		t.Fatalf("expected a bomb_expiring event, got %+v", notifier.events)
	}
}

func TestBombSweepLeavesFreshBombsAlone(t *testing.T) {
	accepted := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	task := domain.Task{ID: "t1", Title: "Cold shower", IsBomb: true, BombTimeLimit: 4 * time.Hour}

	instances := &mockInstanceRepo{
		ListActiveBombsFunc: func(_ context.Context) ([]repository.InstanceWithTask, error) {
			return []repository.InstanceWithTask{{
				Instance: domain.TaskInstance{ID: "i1", TaskID: "t1", ProfileID: "alice", TimeAccepted: accepted, Status: domain.StatusActive},
				Task:     task,
			}}, nil
		},
	}
	notifier := &mockNotifier{}
	uc := New(nil, instances, nil, nil, notifier, nil, nil, Policy{BombWarning: time.Hour}, nil)
	uc.now = func() time.Time { return accepted.Add(time.Minute) }

	exploded, err := uc.RunBombSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exploded != 0 || len(notifier.events) != 0 {
		t.Fatalf("fresh bomb must be untouched, got exploded=%d events=%d", exploded, len(notifier.events))
	}
}

func TestAssignmentSweepSkipsBusyProfiles(t *testing.T) {
	profiles := &mockProfileRepo{
		ListFunc: func(_ context.Context, _ repository.ProfileFilter) ([]domain.Profile, error) {
			return []domain.Profile{{ID: "busy", Username: "busy"}, {ID: "idle", Username: "idle"}}, nil
		},
	}
	tasks := &mockTaskRepo{
		ListFunc: func(_ context.Context, _ repository.TaskFilter) ([]domain.Task, error) {
			return []domain.Task{{ID: "t1", Title: "Recycle"}}, nil
		},
	}
	var created []*domain.TaskInstance
	instances := &mockInstanceRepo{
		CountActiveFunc: func(_ context.Context, profileID string) (int, error) {
			if profileID == "busy" {
				return 5, nil
			}
			return 0, nil
		},
		ListFunc: func(_ context.Context, _ repository.InstanceFilter) ([]domain.TaskInstance, error) {
			return nil, nil
		},
		CreateFunc: func(_ context.Context, inst *domain.TaskInstance) (*domain.TaskInstance, error) {
			inst.ID = "new"
			created = append(created, inst)
			return inst, nil
		},
	}
	notifier := &mockNotifier{}
	uc := New(tasks, instances, profiles, nil, notifier, nil, nil, Policy{MaxAssignedActive: 5}, nil)

	assigned, err := uc.RunAssignmentSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assigned != 1 {
		t.Fatalf("expected 1 assignment, got %d", assigned)
	}
	if len(created) != 1 || created[0].ProfileID != "idle" {
		t.Fatalf("expected the idle profile to get the task, got %+v", created)
	}
	if created[0].OriginMessage != "Sustainable Steve tagged you!" {
		t.Fatalf("unexpected origin message %q", created[0].OriginMessage)
	}
	if len(notifier.events) != 1 || notifier.events[0].ProfileID != "idle" {
		t.Fatalf("expected one event for the idle profile, got %+v", notifier.events)
	}
}

func TestAssignmentSweepSkipsProfilesWithNothingAvailable(t *testing.T) {
	profiles := &mockProfileRepo{
		ListFunc: func(_ context.Context, _ repository.ProfileFilter) ([]domain.Profile, error) {
			return []domain.Profile{{ID: "p1", Username: "p1"}}, nil
		},
	}
	tasks := &mockTaskRepo{
		ListFunc: func(_ context.Context, _ repository.TaskFilter) ([]domain.Task, error) {
			return []domain.Task{{ID: "t1", Title: "Recycle"}}, nil
		},
	}
	instances := &mockInstanceRepo{
		CountActiveFunc: func(_ context.Context, _ string) (int, error) { return 1, nil },
		ListFunc: func(_ context.Context, _ repository.InstanceFilter) ([]domain.TaskInstance, error) {
			return []domain.TaskInstance{{ID: "i1", Status: domain.StatusActive}}, nil
		},
	}
	uc := New(tasks, instances, profiles, nil, nil, nil, nil, Policy{}, nil)

	assigned, err := uc.RunAssignmentSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assigned != 0 {
		t.Fatalf("expected no assignment, got %d", assigned)
	}
}

func TestAssignmentSweepEmptyCatalog(t *testing.T) {
	profiles := &mockProfileRepo{
		ListFunc: func(_ context.Context, _ repository.ProfileFilter) ([]domain.Profile, error) {
			return []domain.Profile{{ID: "p1"}}, nil
		},
	}
	tasks := &mockTaskRepo{
		ListFunc: func(_ context.Context, _ repository.TaskFilter) ([]domain.Task, error) {
			return nil, nil
		},
	}
	uc := New(tasks, &mockInstanceRepo{}, profiles, nil, nil, nil, nil, Policy{}, nil)

	assigned, err := uc.RunAssignmentSweep(context.Background())
	if err != nil || assigned != 0 {
		t.Fatalf("expected clean no-op, got assigned=%d err=%v", assigned, err)
	}
}
