package tasks

import (
	"context"
	"time"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

type mockTaskRepo struct {
	GetByIDFunc func(ctx context.Context, id string) (*domain.Task, error)
	ListFunc    func(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error)
	CreateFunc  func(ctx context.Context, task *domain.Task) (*domain.Task, error)
	UpdateFunc  func(ctx context.Context, task *domain.Task) error
	DeleteFunc  func(ctx context.Context, id string) error
}

var _ repository.TaskRepository = (*mockTaskRepo)(nil)

func (m *mockTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return m.ListFunc(ctx, filter)
}
func (m *mockTaskRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return m.CreateFunc(ctx, task)
}
func (m *mockTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	return m.UpdateFunc(ctx, task)
}
func (m *mockTaskRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

type mockInstanceRepo struct {
	GetByIDFunc              func(ctx context.Context, id string) (*domain.TaskInstance, error)
	ListFunc                 func(ctx context.Context, filter repository.InstanceFilter) ([]domain.TaskInstance, error)
	CreateFunc               func(ctx context.Context, instance *domain.TaskInstance) (*domain.TaskInstance, error)
	DeleteFunc               func(ctx context.Context, id string) error
	UpdateStatusIfFunc       func(ctx context.Context, id string, expect, next domain.InstanceStatus, completedAt *time.Time) error
	SubmitCompletionFunc     func(ctx context.Context, id string, next domain.InstanceStatus, completedAt time.Time, photoRef, note, location string) error
	CreateFromTagFunc        func(ctx context.Context, sourceID string, instance *domain.TaskInstance) (*domain.TaskInstance, error)
	AddLikeFunc              func(ctx context.Context, instanceID, profileID string) (int, error)
	AddReportFunc            func(ctx context.Context, instanceID, profileID string) (int, error)
	RestoreFunc              func(ctx context.Context, id string, completedAt time.Time) error
	ListPendingOlderThanFunc func(ctx context.Context, cutoff time.Time) ([]domain.TaskInstance, error)
	ListActiveBombsFunc      func(ctx context.Context) ([]repository.InstanceWithTask, error)
	CountActiveFunc          func(ctx context.Context, profileID string) (int, error)
	SumPointsFunc            func(ctx context.Context, profileID string) (int, error)
}

var _ repository.InstanceRepository = (*mockInstanceRepo)(nil)

func (m *mockInstanceRepo) GetByID(ctx context.Context, id string) (*domain.TaskInstance, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockInstanceRepo) List(ctx context.Context, filter repository.InstanceFilter) ([]domain.TaskInstance, error) {
	return m.ListFunc(ctx, filter)
}
func (m *mockInstanceRepo) Create(ctx context.Context, instance *domain.TaskInstance) (*domain.TaskInstance, error) {
	return m.CreateFunc(ctx, instance)
}
func (m *mockInstanceRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}
func (m *mockInstanceRepo) UpdateStatusIf(ctx context.Context, id string, expect, next domain.InstanceStatus, completedAt *time.Time) error {
	return m.UpdateStatusIfFunc(ctx, id, expect, next, completedAt)
}
func (m *mockInstanceRepo) SubmitCompletion(ctx context.Context, id string, next domain.InstanceStatus, completedAt time.Time, photoRef, note, location string) error {
	return m.SubmitCompletionFunc(ctx, id, next, completedAt, photoRef, note, location)
}
func (m *mockInstanceRepo) CreateFromTag(ctx context.Context, sourceID string, instance *domain.TaskInstance) (*domain.TaskInstance, error) {
	return m.CreateFromTagFunc(ctx, sourceID, instance)
}
func (m *mockInstanceRepo) AddLike(ctx context.Context, instanceID, profileID string) (int, error) {
	return m.AddLikeFunc(ctx, instanceID, profileID)
}
func (m *mockInstanceRepo) AddReport(ctx context.Context, instanceID, profileID string) (int, error) {
	return m.AddReportFunc(ctx, instanceID, profileID)
}
func (m *mockInstanceRepo) Restore(ctx context.Context, id string, completedAt time.Time) error {
	return m.RestoreFunc(ctx, id, completedAt)
}
func (m *mockInstanceRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.TaskInstance, error) {
	return m.ListPendingOlderThanFunc(ctx, cutoff)
}
func (m *mockInstanceRepo) ListActiveBombs(ctx context.Context) ([]repository.InstanceWithTask, error) {
	return m.ListActiveBombsFunc(ctx)
}
func (m *mockInstanceRepo) CountActive(ctx context.Context, profileID string) (int, error) {
	return m.CountActiveFunc(ctx, profileID)
}
func (m *mockInstanceRepo) SumPoints(ctx context.Context, profileID string) (int, error) {
	return m.SumPointsFunc(ctx, profileID)
}

type mockProfileRepo struct {
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Profile, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*domain.Profile, error)
	ListFunc          func(ctx context.Context, filter repository.ProfileFilter) ([]domain.Profile, error)
	CreateFunc        func(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	UpdateFunc        func(ctx context.Context, profile *domain.Profile) error
}

var _ repository.ProfileRepository = (*mockProfileRepo)(nil)

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockProfileRepo) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return m.GetByUsernameFunc(ctx, username)
}
func (m *mockProfileRepo) List(ctx context.Context, filter repository.ProfileFilter) ([]domain.Profile, error) {
	return m.ListFunc(ctx, filter)
}
func (m *mockProfileRepo) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	return m.CreateFunc(ctx, profile)
}
func (m *mockProfileRepo) Update(ctx context.Context, profile *domain.Profile) error {
	return m.UpdateFunc(ctx, profile)
}

type mockFriendRepo struct {
	GetByIDFunc       func(ctx context.Context, id string) (*domain.FriendRequest, error)
	GetBetweenFunc    func(ctx context.Context, a, b string) (*domain.FriendRequest, error)
	CreateFunc        func(ctx context.Context, request *domain.FriendRequest) (*domain.FriendRequest, error)
	AcceptFunc        func(ctx context.Context, id string) error
	DeleteFunc        func(ctx context.Context, id string) error
	ListByProfileFunc func(ctx context.Context, profileID string, status domain.FriendStatus) ([]domain.FriendRequest, error)
}

var _ repository.FriendRepository = (*mockFriendRepo)(nil)

func (m *mockFriendRepo) GetByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockFriendRepo) GetBetween(ctx context.Context, a, b string) (*domain.FriendRequest, error) {
	return m.GetBetweenFunc(ctx, a, b)
}
func (m *mockFriendRepo) Create(ctx context.Context, request *domain.FriendRequest) (*domain.FriendRequest, error) {
	return m.CreateFunc(ctx, request)
}
func (m *mockFriendRepo) Accept(ctx context.Context, id string) error {
	return m.AcceptFunc(ctx, id)
}
func (m *mockFriendRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}
func (m *mockFriendRepo) ListByProfile(ctx context.Context, profileID string, status domain.FriendStatus) ([]domain.FriendRequest, error) {
	return m.ListByProfileFunc(ctx, profileID, status)
}

type mockNotifier struct {
	events []domain.Event
	err    error
}

func (m *mockNotifier) Emit(_ context.Context, event domain.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}
