package domain

import "time"

// EventType names the engagement events the core emits. Delivery and
// formatting belong to a downstream notifier, not to the core.
type EventType string

const (
	EventFriendRequestCreated  EventType = "friend_request_created"
	EventFriendRequestAccepted EventType = "friend_request_accepted"
	EventLeagueJoinRequested   EventType = "league_join_requested"
	EventLeagueMemberJoined    EventType = "league_member_joined"
	EventLeagueInviteSent      EventType = "league_invite_sent"
	EventTagReceived           EventType = "tag_received"
	EventBombExpiring          EventType = "bomb_expiring"
)

// Event is an abstract notification emitted by lifecycle and graph
// operations as part of their own execution.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	ProfileID  string    `json:"profile_id"`           // recipient
	ActorID    string    `json:"actor_id,omitempty"`   // who triggered it
	SubjectID  string    `json:"subject_id,omitempty"` // instance/league/request id
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
