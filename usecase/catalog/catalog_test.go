package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

type mockTaskRepo struct {
	repository.TaskRepository
	CreateFunc func(ctx context.Context, task *domain.Task) (*domain.Task, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *mockTaskRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return m.CreateFunc(ctx, task)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

type mockCategoryRepo struct {
	repository.CategoryRepository
	GetByIDFunc func(ctx context.Context, id string) (*domain.TaskCategory, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*domain.TaskCategory, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

type mockProfileRepo struct {
	repository.ProfileRepository
	profiles map[string]*domain.Profile
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

func staffAndMember() *mockProfileRepo {
	return &mockProfileRepo{profiles: map[string]*domain.Profile{
		"staff-1":  {ID: "staff-1", Username: "keeper", Staff: true},
		"member-1": {ID: "member-1", Username: "alice"},
	}}
}

func validTask() *domain.Task {
	return &domain.Task{
		Title:        "Plant a tree",
		Points:       30,
		TimeToRepeat: 24 * time.Hour,
		CategoryID:   "cat-1",
		Rarity:       domain.RarityNormal,
	}
}

func TestCreateTaskRequiresStaff(t *testing.T) {
	uc := New(
		&mockTaskRepo{CreateFunc: func(_ context.Context, task *domain.Task) (*domain.Task, error) {
			t.Fatal("create should not be reached")
			return task, nil
		}},
		&mockCategoryRepo{},
		staffAndMember(),
		nil,
	)

	_, err := uc.CreateTask(context.Background(), "member-1", validTask())
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestCreateTaskChecksCategory(t *testing.T) {
	uc := New(
		&mockTaskRepo{},
		&mockCategoryRepo{GetByIDFunc: func(context.Context, string) (*domain.TaskCategory, error) {
			return nil, domain.ErrCategoryNotFound
		}},
		staffAndMember(),
		nil,
	)

	_, err := uc.CreateTask(context.Background(), "staff-1", validTask())
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestCreateTaskAsStaff(t *testing.T) {
	created := false
	uc := New(
		&mockTaskRepo{CreateFunc: func(_ context.Context, task *domain.Task) (*domain.Task, error) {
			created = true
			task.ID = "task-1"
			return task, nil
		}},
		&mockCategoryRepo{GetByIDFunc: func(context.Context, string) (*domain.TaskCategory, error) {
			return &domain.TaskCategory{ID: "cat-1", Name: "Nature"}, nil
		}},
		staffAndMember(),
		nil,
	)

	task, err := uc.CreateTask(context.Background(), "staff-1", validTask())
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if !created || task.ID != "task-1" {
		t.Error("task was not persisted")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	uc := New(&mockTaskRepo{}, &mockCategoryRepo{}, staffAndMember(), nil)

	bad := validTask()
	bad.Points = 0
	if _, err := uc.CreateTask(context.Background(), "staff-1", bad); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("err = %v, want INVALID", err)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	uc := New(
		&mockTaskRepo{},
		&mockCategoryRepo{DeleteFunc: func(context.Context, string) error {
			return domain.ErrCategoryInUse
		}},
		staffAndMember(),
		nil,
	)

	err := uc.DeleteCategory(context.Background(), "staff-1", "cat-1")
	if !domain.IsDomainError(err, domain.ErrCodeProtected) {
		t.Fatalf("err = %v, want PROTECTED", err)
	}
}

func TestDeleteTaskWithHistoryBlocked(t *testing.T) {
	uc := New(
		&mockTaskRepo{DeleteFunc: func(context.Context, string) error {
			return domain.ErrTaskInUse
		}},
		&mockCategoryRepo{},
		staffAndMember(),
		nil,
	)

	err := uc.DeleteTask(context.Background(), "staff-1", "task-1")
	if !domain.IsDomainError(err, domain.ErrCodeProtected) {
		t.Fatalf("err = %v, want PROTECTED", err)
	}
}

func TestCreateCategoryRequiresName(t *testing.T) {
	uc := New(&mockTaskRepo{}, &mockCategoryRepo{}, staffAndMember(), nil)

	_, err := uc.CreateCategory(context.Background(), "staff-1", &domain.TaskCategory{})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("err = %v, want INVALID", err)
	}
}
