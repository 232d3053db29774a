package leagues

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
	"github.com/sustaingain/backend/usecase"
)

// UseCase manages leagues, memberships and the live ranking.
type UseCase struct {
	leagues   repository.LeagueRepository
	instances repository.InstanceRepository
	profiles  repository.ProfileRepository
	notifier  usecase.Notifier
	logger    *zap.Logger

	now func() time.Time
}

func New(
	leagues repository.LeagueRepository,
	instances repository.InstanceRepository,
	profiles repository.ProfileRepository,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		leagues:   leagues,
		instances: instances,
		profiles:  profiles,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates and persists a league, making the creator its first
// joined admin.
func (uc *UseCase) Create(ctx context.Context, league *domain.League, creatorID string) (*domain.League, error) {
	if err := league.Validate(); err != nil {
		return nil, err
	}
	created, err := uc.leagues.Create(ctx, league)
	if err != nil {
		return nil, err
	}
	err = uc.leagues.UpsertMember(ctx, &domain.LeagueMember{
		LeagueID:  created.ID,
		ProfileID: creatorID,
		Status:    domain.MemberJoined,
		Role:      domain.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get fetches a league. Private leagues are visible to their members only.
func (uc *UseCase) Get(ctx context.Context, leagueID, viewerID string) (*domain.League, error) {
	league, err := uc.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if league.Visibility == domain.LeaguePrivate {
		if _, err := uc.leagues.GetMember(ctx, leagueID, viewerID); err != nil {
			return nil, domain.ErrLeagueNotFound
		}
	}
	return league, nil
}

// List returns visible leagues: every public league.
func (uc *UseCase) List(ctx context.Context, filter repository.LeagueFilter) ([]domain.League, error) {
	filter.Visibility = domain.LeaguePublic
	return uc.leagues.List(ctx, filter)
}

// JoinResult reports whether the profile ended up joined or pending.
type JoinResult struct {
	Status  domain.MemberStatus `json:"status"`
	Message string              `json:"message"`
}

// Join enters a league. An open league joins directly; an invite-only one
// records a pending request unless a standing invite exists, which is
// consumed into a direct join.
func (uc *UseCase) Join(ctx context.Context, leagueID, profileID string) (*JoinResult, error) {
	league, err := uc.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.leagues.GetMember(ctx, leagueID, profileID)
	switch {
	case err == nil:
		switch existing.Status {
		case domain.MemberJoined:
			return nil, domain.StateConflictf("you are already a member of %s", league.Name)
		case domain.MemberPending:
			return nil, domain.StateConflictf("your join request for %s is still pending", league.Name)
		case domain.MemberInvited:
			// A standing invite turns the join into a direct accept.
			return uc.completeJoin(ctx, league, profileID, existing.Role)
		}
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
	default:
		return nil, err
	}

	if !league.InviteOnly {
		return uc.completeJoin(ctx, league, profileID, domain.RoleMember)
	}

	err = uc.leagues.UpsertMember(ctx, &domain.LeagueMember{
		LeagueID:  leagueID,
		ProfileID: profileID,
		Status:    domain.MemberPending,
		Role:      domain.RoleMember,
	})
	if err != nil {
		return nil, err
	}
	uc.notifyAdmins(ctx, league, domain.Event{
		Type:      domain.EventLeagueJoinRequested,
		ActorID:   profileID,
		SubjectID: leagueID,
		Message:   "someone asked to join " + league.Name,
	})
	return &JoinResult{Status: domain.MemberPending, Message: "join request sent"}, nil
}

func (uc *UseCase) completeJoin(ctx context.Context, league *domain.League, profileID string, role domain.MemberRole) (*JoinResult, error) {
	err := uc.leagues.UpsertMember(ctx, &domain.LeagueMember{
		LeagueID:  league.ID,
		ProfileID: profileID,
		Status:    domain.MemberJoined,
		Role:      role,
	})
	if err != nil {
		return nil, err
	}
	uc.notifyAdmins(ctx, league, domain.Event{
		Type:      domain.EventLeagueMemberJoined,
		ActorID:   profileID,
		SubjectID: league.ID,
		Message:   "a new member joined " + league.Name,
	})
	return &JoinResult{Status: domain.MemberJoined, Message: "welcome to " + league.Name}, nil
}

// InviteResult distinguishes a fresh invite from an auto-accepted one.
type InviteResult struct {
	Status  domain.MemberStatus `json:"status"`
	Message string              `json:"message"`
}

// Invite asks a profile into the league. Admins only. Inviting a profile
// whose join request is pending accepts that request instead, and the
// result says so.
func (uc *UseCase) Invite(ctx context.Context, leagueID, actorID, targetUsername string) (*InviteResult, error) {
	league, err := uc.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if err := uc.requireAdmin(ctx, leagueID, actorID); err != nil {
		return nil, err
	}

	target, err := uc.profiles.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	existing, err := uc.leagues.GetMember(ctx, leagueID, target.ID)
	switch {
	case err == nil:
		switch existing.Status {
		case domain.MemberJoined:
			return nil, domain.StateConflictf("%s is already a member", target.Username)
		case domain.MemberInvited:
			return nil, domain.StateConflictf("%s is already invited", target.Username)
		case domain.MemberPending:
			// The target already asked to join; the invite accepts it.
			result, err := uc.completeJoin(ctx, league, target.ID, existing.Role)
			if err != nil {
				return nil, err
			}
			return &InviteResult{Status: result.Status, Message: target.Username + " had already requested to join and is now a member"}, nil
		}
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
	default:
		return nil, err
	}

	err = uc.leagues.UpsertMember(ctx, &domain.LeagueMember{
		LeagueID:  leagueID,
		ProfileID: target.ID,
		Status:    domain.MemberInvited,
		Role:      domain.RoleMember,
	})
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, domain.Event{
		Type:      domain.EventLeagueInviteSent,
		ProfileID: target.ID,
		ActorID:   actorID,
		SubjectID: leagueID,
		Message:   "you have been invited to " + league.Name,
	})
	return &InviteResult{Status: domain.MemberInvited, Message: "invited " + target.Username}, nil
}

// Approve accepts a pending join request. Admins only.
func (uc *UseCase) Approve(ctx context.Context, leagueID, actorID, profileID string) error {
	league, err := uc.leagues.GetByID(ctx, leagueID)
	if err != nil {
		return err
	}
	if err := uc.requireAdmin(ctx, leagueID, actorID); err != nil {
		return err
	}
	member, err := uc.leagues.GetMember(ctx, leagueID, profileID)
	if err != nil {
		return err
	}
	if member.Status != domain.MemberPending {
		return domain.StateConflictf("membership is %s, expected %s", member.Status, domain.MemberPending)
	}
	_, err = uc.completeJoin(ctx, league, profileID, member.Role)
	return err
}

// Promote raises a joined member to admin. Admins only.
func (uc *UseCase) Promote(ctx context.Context, leagueID, actorID, profileID string) error {
	if err := uc.requireAdmin(ctx, leagueID, actorID); err != nil {
		return err
	}
	member, err := uc.leagues.GetMember(ctx, leagueID, profileID)
	if err != nil {
		return err
	}
	if member.Status != domain.MemberJoined {
		return domain.StateConflictf("only joined members can be promoted")
	}
	return uc.leagues.SetRole(ctx, leagueID, profileID, domain.RoleAdmin, false)
}

// Demote lowers an admin to member. The repository refuses to demote the
// last remaining admin.
func (uc *UseCase) Demote(ctx context.Context, leagueID, actorID, profileID string) error {
	if err := uc.requireAdmin(ctx, leagueID, actorID); err != nil {
		return err
	}
	return uc.leagues.SetRole(ctx, leagueID, profileID, domain.RoleMember, true)
}

// Leave removes the actor's own membership. A sole admin cannot leave.
func (uc *UseCase) Leave(ctx context.Context, leagueID, actorID string) error {
	member, err := uc.leagues.GetMember(ctx, leagueID, actorID)
	if err != nil {
		return err
	}
	requireOtherAdmin := member.Role == domain.RoleAdmin && member.Status == domain.MemberJoined
	return uc.leagues.DeleteMember(ctx, leagueID, actorID, requireOtherAdmin)
}

// Kick removes another profile's membership. Admins only; kicking an admin
// is subject to the same sole-admin protection.
func (uc *UseCase) Kick(ctx context.Context, leagueID, actorID, profileID string) error {
	if err := uc.requireAdmin(ctx, leagueID, actorID); err != nil {
		return err
	}
	if actorID == profileID {
		return domain.Validationf("use leave to remove yourself")
	}
	member, err := uc.leagues.GetMember(ctx, leagueID, profileID)
	if err != nil {
		return err
	}
	requireOtherAdmin := member.Role == domain.RoleAdmin && member.Status == domain.MemberJoined
	return uc.leagues.DeleteMember(ctx, leagueID, profileID, requireOtherAdmin)
}

// Ranking returns the joined members ordered by live points, best first.
// Points are recomputed from settled instances on every call.
func (uc *UseCase) Ranking(ctx context.Context, leagueID, viewerID string) ([]domain.RankedMember, error) {
	if _, err := uc.Get(ctx, leagueID, viewerID); err != nil {
		return nil, err
	}
	members, err := uc.leagues.ListMembers(ctx, leagueID, domain.MemberJoined)
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.RankedMember, 0, len(members))
	for _, member := range members {
		points, err := uc.instances.SumPoints(ctx, member.ProfileID)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, domain.RankedMember{Member: member, Points: points})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	return ranked, nil
}

func (uc *UseCase) requireAdmin(ctx context.Context, leagueID, profileID string) error {
	member, err := uc.leagues.GetMember(ctx, leagueID, profileID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.NewError(domain.ErrCodeForbidden, "league admin role required")
		}
		return err
	}
	if member.Role != domain.RoleAdmin || member.Status != domain.MemberJoined {
		return domain.NewError(domain.ErrCodeForbidden, "league admin role required")
	}
	return nil
}

func (uc *UseCase) notifyAdmins(ctx context.Context, league *domain.League, event domain.Event) {
	admins, err := uc.leagues.ListMembers(ctx, league.ID, domain.MemberJoined)
	if err != nil {
		uc.logger.Warn("admin listing failed", zap.String("league_id", league.ID), zap.Error(err))
		return
	}
	for _, member := range admins {
		if member.Role != domain.RoleAdmin || member.ProfileID == event.ActorID {
			continue
		}
		event.ProfileID = member.ProfileID
		uc.emit(ctx, event)
	}
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
