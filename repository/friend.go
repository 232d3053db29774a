package repository

import (
	"context"

	"github.com/sustaingain/backend/domain"
)

// FriendRepository persists the directed friend-request graph. Create must
// check both edge directions and insert inside one transaction so two
// concurrent requests cannot produce conflicting edges.
type FriendRepository interface {
	GetByID(ctx context.Context, id string) (*domain.FriendRequest, error)
	// GetBetween returns the edge between two profiles in either direction.
	GetBetween(ctx context.Context, a, b string) (*domain.FriendRequest, error)
	Create(ctx context.Context, request *domain.FriendRequest) (*domain.FriendRequest, error)
	Accept(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// ListByProfile returns every edge touching the profile with the given
	// status, regardless of direction.
	ListByProfile(ctx context.Context, profileID string, status domain.FriendStatus) ([]domain.FriendRequest, error)
}
