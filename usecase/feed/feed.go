package feed

import (
	"context"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

// UseCase assembles the activity feed: handed-in and settled instances
// belonging to the viewer and their accepted friends, newest first.
type UseCase struct {
	instances repository.InstanceRepository
	friends   repository.FriendRepository
	logger    *zap.Logger
}

func New(
	instances repository.InstanceRepository,
	friends repository.FriendRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{instances: instances, friends: friends, logger: logger}
}

// For returns the viewer's feed page. ACTIVE instances never appear; an
// attempt becomes visible once it has been handed in.
func (uc *UseCase) For(ctx context.Context, viewerID string, limit, offset int) ([]domain.TaskInstance, error) {
	edges, err := uc.friends.ListByProfile(ctx, viewerID, domain.FriendAccepted)
	if err != nil {
		return nil, err
	}

	visible := make([]string, 0, len(edges)+1)
	visible = append(visible, viewerID)
	for _, edge := range edges {
		visible = append(visible, edge.Other(viewerID))
	}

	return uc.instances.List(ctx, repository.InstanceFilter{
		ProfileIDs:    visible,
		ExcludeActive: true,
		Limit:         limit,
		Offset:        offset,
	})
}
