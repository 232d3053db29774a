package repository

import (
	"context"

	"github.com/sustaingain/backend/domain"
)

type LeagueFilter struct {
	Visibility domain.LeagueVisibility
	Limit      int
	Offset     int
}

// LeagueRepository persists leagues and memberships. Operations that could
// leave a league without an admin take requireOtherAdmin and re-check the
// admin count under a row lock inside the same transaction.
type LeagueRepository interface {
	GetByID(ctx context.Context, id string) (*domain.League, error)
	GetByName(ctx context.Context, name string) (*domain.League, error)
	List(ctx context.Context, filter LeagueFilter) ([]domain.League, error)
	Create(ctx context.Context, league *domain.League) (*domain.League, error)
	Update(ctx context.Context, league *domain.League) error
	Delete(ctx context.Context, id string) error

	GetMember(ctx context.Context, leagueID, profileID string) (*domain.LeagueMember, error)
	ListMembers(ctx context.Context, leagueID string, status domain.MemberStatus) ([]domain.LeagueMember, error)
	UpsertMember(ctx context.Context, member *domain.LeagueMember) error
	SetRole(ctx context.Context, leagueID, profileID string, role domain.MemberRole, requireOtherAdmin bool) error
	DeleteMember(ctx context.Context, leagueID, profileID string, requireOtherAdmin bool) error
}
