package domain

import "time"

// FriendStatus is the state of a directed friend request edge.
type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
)

// FriendRequest is a directed edge between two profiles. Once accepted the
// edge stays directed in storage but friendship queries treat it as
// undirected. At most one edge may exist per unordered profile pair.
type FriendRequest struct {
	ID            string       `json:"id"`
	FromProfileID string       `json:"from_profile_id"`
	ToProfileID   string       `json:"to_profile_id"`
	Status        FriendStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	RespondedAt   *time.Time   `json:"responded_at,omitempty"`
}

// Other returns the opposite endpoint of the edge relative to profileID.
func (r *FriendRequest) Other(profileID string) string {
	if r.FromProfileID == profileID {
		return r.ToProfileID
	}
	return r.FromProfileID
}

// Involves reports whether the edge touches the given profile.
func (r *FriendRequest) Involves(profileID string) bool {
	return r.FromProfileID == profileID || r.ToProfileID == profileID
}

// FriendOverview partitions a profile's edges for listing screens.
type FriendOverview struct {
	Accepted []Profile       `json:"accepted"`
	Incoming []FriendRequest `json:"incoming"`
	Outgoing []FriendRequest `json:"outgoing"`
}
