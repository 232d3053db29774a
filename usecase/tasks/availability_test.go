package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

func fixedUseCase(instances *mockInstanceRepo, at time.Time) *UseCase {
	uc := New(nil, instances, nil, nil, nil, nil, nil, Policy{}, nil)
	uc.now = func() time.Time { return at }
	return uc
}

func TestIsAvailableNoHistory(t *testing.T) {
	instances := &mockInstanceRepo{
		ListFunc: func(_ context.Context, _ repository.InstanceFilter) ([]domain.TaskInstance, error) {
			return nil, nil
		},
	}
	uc := fixedUseCase(instances, time.Now())

	ok, err := uc.IsAvailable(context.Background(), &domain.Task{ID: "t1"}, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("task with no history should be available")
	}
}

func TestIsAvailableLiveAttemptBlocks(t *testing.T) {
	for _, status := range []domain.InstanceStatus{domain.StatusActive, domain.StatusPendingApproval} {
		instances := &mockInstanceRepo{
			ListFunc: func(_ context.Context, _ repository.InstanceFilter) ([]domain.TaskInstance, error) {
				return []domain.TaskInstance{{ID: "i1", Status: status}}, nil
			},
		}
		uc := fixedUseCase(instances, time.Now())

		ok, err := uc.IsAvailable(context.Background(), &domain.Task{ID: "t1"}, "p1")
		if err != nil {
			t.Fatalf("status %s: unexpected error: %v", status, err)
		}
		if ok {
			t.Fatalf("status %s should block availability", status)
		}
	}
}

func TestIsAvailableCooldownBoundary(t *testing.T) {
	completed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := &domain.Task{ID: "t1", TimeToRepeat: 24 * time.Hour}
	instances := &mockInstanceRepo{
		ListFunc: func(_ context.Context, _ repository.InstanceFilter) ([]domain.TaskInstance, error) {
			return []domain.TaskInstance{{
				ID:            "i1",
				Status:        domain.StatusCompleted,
				TimeCompleted: &completed,
			}}, nil
		},
	}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"inside cooldown", completed.Add(24*time.Hour - time.Second), false},
		{"exactly at expiry", completed.Add(24 * time.Hour), true},
		{"after expiry", completed.Add(25 * time.Hour), true},
	}
	for _, tc := range cases {
		uc := fixedUseCase(instances, tc.now)
		ok, err := uc.IsAvailable(context.Background(), task, "p1")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if ok != tc.want {
			t.Fatalf("%s: got available=%v, want %v", tc.name, ok, tc.want)
		}
	}
}

func TestIsAvailableExplodedCooldownApplies(t *testing.T) {
	exploded := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := &domain.Task{ID: "t1", TimeToRepeat: time.Hour}
	instances := &mockInstanceRepo{
		ListFunc: func(_ context.Context, _ repository.InstanceFilter) ([]domain.TaskInstance, error) {
			return []domain.TaskInstance{{
				ID:            "i1",
				Status:        domain.StatusExploded,
				TimeCompleted: &exploded,
			}}, nil
		},
	}

	uc := fixedUseCase(instances, exploded.Add(30*time.Minute))
	ok, err := uc.IsAvailable(context.Background(), task, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("exploded instance inside cooldown should block")
	}
}

func TestIsAvailableSettledWithoutCompletionTimeBlocks(t *testing.T) {
	instances := &mockInstanceRepo{
		ListFunc: func(_ context.Context, _ repository.InstanceFilter) ([]domain.TaskInstance, error) {
			return []domain.TaskInstance{{ID: "i1", Status: domain.StatusCompleted}}, nil
		},
	}
	uc := fixedUseCase(instances, time.Now())

	ok, err := uc.IsAvailable(context.Background(), &domain.Task{ID: "t1"}, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("settled instance missing its completion time must block")
	}
}

func TestAvailableTasksFiltersBlocked(t *testing.T) {
	completed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tasks := &mockTaskRepo{
		ListFunc: func(_ context.Context, _ repository.TaskFilter) ([]domain.Task, error) {
			return []domain.Task{
				{ID: "free"},
				{ID: "blocked", TimeToRepeat: 24 * time.Hour},
			}, nil
		},
	}
	instances := &mockInstanceRepo{
		ListFunc: func(_ context.Context, filter repository.InstanceFilter) ([]domain.TaskInstance, error) {
			if filter.TaskID != "blocked" {
				return nil, nil
			}
			return []domain.TaskInstance{{
				ID:            "i1",
				Status:        domain.StatusCompleted,
				TimeCompleted: &completed,
			}}, nil
		},
	}
	uc := New(tasks, instances, nil, nil, nil, nil, nil, Policy{}, nil)
	uc.now = func() time.Time { return completed.Add(time.Hour) }

	available, err := uc.AvailableTasks(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(available) != 1 || available[0].ID != "free" {
		t.Fatalf("expected only the free task, got %+v", available)
	}
}
