package feed

import (
	"context"
	"testing"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

type mockInstanceRepo struct {
	repository.InstanceRepository

	ListFunc func(ctx context.Context, filter repository.InstanceFilter) ([]domain.TaskInstance, error)
}

func (m *mockInstanceRepo) List(ctx context.Context, filter repository.InstanceFilter) ([]domain.TaskInstance, error) {
	return m.ListFunc(ctx, filter)
}

type mockFriendRepo struct {
	repository.FriendRepository

	ListByProfileFunc func(ctx context.Context, profileID string, status domain.FriendStatus) ([]domain.FriendRequest, error)
}

func (m *mockFriendRepo) ListByProfile(ctx context.Context, profileID string, status domain.FriendStatus) ([]domain.FriendRequest, error) {
	return m.ListByProfileFunc(ctx, profileID, status)
}

func TestFeedScopedToFriendsAndSelf(t *testing.T) {
	friends := &mockFriendRepo{
		ListByProfileFunc: func(_ context.Context, profileID string, status domain.FriendStatus) ([]domain.FriendRequest, error) {
			if status != domain.FriendAccepted {
				t.Fatalf("feed must use accepted edges only, got %s", status)
			}
			return []domain.FriendRequest{
				{ID: "r1", FromProfileID: "bob", ToProfileID: profileID, Status: domain.FriendAccepted},
				{ID: "r2", FromProfileID: profileID, ToProfileID: "carol", Status: domain.FriendAccepted},
			}, nil
		},
	}
	var gotFilter repository.InstanceFilter
	instances := &mockInstanceRepo{
		ListFunc: func(_ context.Context, filter repository.InstanceFilter) ([]domain.TaskInstance, error) {
			gotFilter = filter
			return []domain.TaskInstance{{ID: "i1", Status: domain.StatusCompleted}}, nil
		},
	}
	uc := New(instances, friends, nil)

	feed, err := uc.For(context.Background(), "alice", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(feed))
	}
	if !gotFilter.ExcludeActive {
		t.Fatal("feed must exclude active instances")
	}
	want := map[string]bool{"alice": true, "bob": true, "carol": true}
	if len(gotFilter.ProfileIDs) != len(want) {
		t.Fatalf("expected %d visible profiles, got %v", len(want), gotFilter.ProfileIDs)
	}
	for _, id := range gotFilter.ProfileIDs {
		if !want[id] {
			t.Fatalf("unexpected profile %s in scope", id)
		}
	}
}

func TestFeedWithNoFriendsShowsOwnOnly(t *testing.T) {
	friends := &mockFriendRepo{
		ListByProfileFunc: func(_ context.Context, _ string, _ domain.FriendStatus) ([]domain.FriendRequest, error) {
			return nil, nil
		},
	}
	var gotFilter repository.InstanceFilter
	instances := &mockInstanceRepo{
		ListFunc: func(_ context.Context, filter repository.InstanceFilter) ([]domain.TaskInstance, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	uc := New(instances, friends, nil)

	if _, err := uc.For(context.Background(), "alice", 20, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotFilter.ProfileIDs) != 1 || gotFilter.ProfileIDs[0] != "alice" {
		t.Fatalf("expected only the viewer in scope, got %v", gotFilter.ProfileIDs)
	}
}
