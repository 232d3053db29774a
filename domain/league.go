package domain

import "time"

// LeagueVisibility controls who can view a league.
type LeagueVisibility string

const (
	LeaguePublic  LeagueVisibility = "public"
	LeaguePrivate LeagueVisibility = "private"
)

// MemberStatus tracks how a profile relates to a league.
//
// invited: an admin invited the profile; pending: the profile requested to
// join an invite-only league; joined: full member.
type MemberStatus string

const (
	MemberInvited MemberStatus = "invited"
	MemberPending MemberStatus = "pending"
	MemberJoined  MemberStatus = "joined"
)

// MemberRole is orthogonal to status.
type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
)

// League is a competitive group of profiles ranked by aggregate points.
type League struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Visibility  LeagueVisibility `json:"visibility"`
	InviteOnly  bool             `json:"invite_only"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Validate enforces league invariants before persistence.
func (l *League) Validate() error {
	if l == nil {
		return ErrInvalidPayload
	}
	if l.Name == "" {
		return Validationf("league name is required")
	}
	switch l.Visibility {
	case LeaguePublic, LeaguePrivate:
	default:
		return Validationf("unknown league visibility %q", l.Visibility)
	}
	if l.Visibility == LeaguePrivate && !l.InviteOnly {
		return Validationf("private leagues must be invite-only")
	}
	return nil
}

// LeagueMember is the membership row for one (league, profile) pair.
// A profile holds at most one row per league.
type LeagueMember struct {
	LeagueID  string       `json:"league_id"`
	ProfileID string       `json:"profile_id"`
	Status    MemberStatus `json:"status"`
	Role      MemberRole   `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

// RankedMember pairs a joined member with its live point aggregate.
type RankedMember struct {
	Member LeagueMember `json:"member"`
	Points int          `json:"points"`
}
