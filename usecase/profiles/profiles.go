package profiles

import (
	"context"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

// UseCase serves profile pages and profile edits.
type UseCase struct {
	profiles  repository.ProfileRepository
	instances repository.InstanceRepository
	friends   repository.FriendRepository
	logger    *zap.Logger
}

func New(
	profiles repository.ProfileRepository,
	instances repository.InstanceRepository,
	friends repository.FriendRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		profiles:  profiles,
		instances: instances,
		friends:   friends,
		logger:    logger,
	}
}

// Page is a profile together with its live point total and friend count.
type Page struct {
	Profile domain.Profile `json:"profile"`
	Points  int            `json:"points"`
	Friends int            `json:"friends"`
}

// Get assembles the profile page for the given username.
func (uc *UseCase) Get(ctx context.Context, username string) (*Page, error) {
	profile, err := uc.profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	points, err := uc.instances.SumPoints(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	edges, err := uc.friends.ListByProfile(ctx, profile.ID, domain.FriendAccepted)
	if err != nil {
		return nil, err
	}
	return &Page{Profile: *profile, Points: points, Friends: len(edges)}, nil
}

// UpdateInput carries the editable profile fields.
type UpdateInput struct {
	Bio       *string
	ImagePath *string
}

// Update edits the actor's own profile.
func (uc *UseCase) Update(ctx context.Context, actorID string, input UpdateInput) (*domain.Profile, error) {
	profile, err := uc.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if input.Bio != nil {
		profile.Bio = *input.Bio
	}
	if input.ImagePath != nil {
		profile.ImagePath = *input.ImagePath
	}
	if err := uc.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// List pages through all profiles.
func (uc *UseCase) List(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	return uc.profiles.List(ctx, repository.ProfileFilter{Limit: limit, Offset: offset})
}
