package friends

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
	"github.com/sustaingain/backend/usecase"
)

// UseCase manages the friend graph: requests, responses and listings.
type UseCase struct {
	friends  repository.FriendRepository
	profiles repository.ProfileRepository
	notifier usecase.Notifier
	logger   *zap.Logger

	now func() time.Time
}

func New(
	friends repository.FriendRepository,
	profiles repository.ProfileRepository,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		friends:  friends,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Request sends a friend request to the profile with the given username.
// Self-requests and duplicate edges in either direction are rejected.
func (uc *UseCase) Request(ctx context.Context, fromID, targetUsername string) (*domain.FriendRequest, error) {
	target, err := uc.profiles.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == fromID {
		return nil, domain.Validationf("you cannot send a friend request to yourself")
	}

	actor, err := uc.profiles.GetByID(ctx, fromID)
	if err != nil {
		return nil, err
	}

	request, err := uc.friends.Create(ctx, &domain.FriendRequest{
		FromProfileID: fromID,
		ToProfileID:   target.ID,
		Status:        domain.FriendPending,
	})
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, domain.Event{
		Type:      domain.EventFriendRequestCreated,
		ProfileID: target.ID,
		ActorID:   fromID,
		SubjectID: request.ID,
		Message:   actor.Username + " sent you a friend request",
	})
	return request, nil
}

// Accept turns a pending request into a friendship. Only the recipient may
// accept.
func (uc *UseCase) Accept(ctx context.Context, requestID, actorID string) error {
	request, err := uc.friends.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ToProfileID != actorID {
		return domain.NewError(domain.ErrCodeForbidden, "only the recipient can accept a friend request")
	}
	if request.Status != domain.FriendPending {
		return domain.StateConflictf("friend request is already %s", request.Status)
	}

	if err := uc.friends.Accept(ctx, requestID); err != nil {
		return err
	}

	actor, err := uc.profiles.GetByID(ctx, actorID)
	if err != nil {
		uc.logger.Warn("actor lookup failed after accept", zap.Error(err))
		return nil
	}
	uc.emit(ctx, domain.Event{
		Type:      domain.EventFriendRequestAccepted,
		ProfileID: request.FromProfileID,
		ActorID:   actorID,
		SubjectID: request.ID,
		Message:   actor.Username + " accepted your friend request",
	})
	return nil
}

// Decline removes a pending request. Only the recipient may decline.
func (uc *UseCase) Decline(ctx context.Context, requestID, actorID string) error {
	request, err := uc.friends.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ToProfileID != actorID {
		return domain.NewError(domain.ErrCodeForbidden, "only the recipient can decline a friend request")
	}
	if request.Status != domain.FriendPending {
		return domain.StateConflictf("friend request is already %s", request.Status)
	}
	return uc.friends.Delete(ctx, requestID)
}

// Cancel withdraws a pending request. Only the sender may cancel.
func (uc *UseCase) Cancel(ctx context.Context, requestID, actorID string) error {
	request, err := uc.friends.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.FromProfileID != actorID {
		return domain.NewError(domain.ErrCodeForbidden, "only the sender can cancel a friend request")
	}
	if request.Status != domain.FriendPending {
		return domain.StateConflictf("friend request is already %s", request.Status)
	}
	return uc.friends.Delete(ctx, requestID)
}

// Unfriend removes an accepted friendship. Either endpoint may do it.
func (uc *UseCase) Unfriend(ctx context.Context, actorID, otherID string) error {
	edge, err := uc.friends.GetBetween(ctx, actorID, otherID)
	if err != nil {
		return err
	}
	if edge.Status != domain.FriendAccepted {
		return domain.StateConflictf("you are not friends with this profile")
	}
	return uc.friends.Delete(ctx, edge.ID)
}

// Friends returns the profiles the given profile is friends with.
func (uc *UseCase) Friends(ctx context.Context, profileID string) ([]domain.Profile, error) {
	edges, err := uc.friends.ListByProfile(ctx, profileID, domain.FriendAccepted)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Profile, 0, len(edges))
	for _, edge := range edges {
		friend, err := uc.profiles.GetByID(ctx, edge.Other(profileID))
		if err != nil {
			uc.logger.Warn("friend profile lookup failed",
				zap.String("profile_id", edge.Other(profileID)), zap.Error(err))
			continue
		}
		result = append(result, *friend)
	}
	return result, nil
}

// Overview partitions the profile's edges into accepted friendships,
// incoming pending requests and outgoing pending requests.
func (uc *UseCase) Overview(ctx context.Context, profileID string) (*domain.FriendOverview, error) {
	accepted, err := uc.Friends(ctx, profileID)
	if err != nil {
		return nil, err
	}
	pending, err := uc.friends.ListByProfile(ctx, profileID, domain.FriendPending)
	if err != nil {
		return nil, err
	}

	overview := &domain.FriendOverview{Accepted: accepted}
	for _, edge := range pending {
		if edge.ToProfileID == profileID {
			overview.Incoming = append(overview.Incoming, edge)
		} else {
			overview.Outgoing = append(overview.Outgoing, edge)
		}
	}
	return overview, nil
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
