package domain

import "testing"

func TestLeaguePrivateRequiresInviteOnly(t *testing.T) {
	league := &League{Name: "Eco Warriors", Visibility: LeaguePrivate}
	if err := league.Validate(); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for private non-invite-only league, got %v", err)
	}

	league.InviteOnly = true
	if err := league.Validate(); err != nil {
		t.Fatalf("expected valid league, got %v", err)
	}
}

func TestLeagueNameRequired(t *testing.T) {
	league := &League{Visibility: LeaguePublic}
	if err := league.Validate(); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for missing name, got %v", err)
	}
}
