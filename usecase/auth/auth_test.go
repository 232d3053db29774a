package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

type mockProfileRepo struct {
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Profile, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*domain.Profile, error)
	CreateFunc        func(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
}

var _ repository.ProfileRepository = (*mockProfileRepo)(nil)

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockProfileRepo) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return m.GetByUsernameFunc(ctx, username)
}

func (m *mockProfileRepo) List(context.Context, repository.ProfileFilter) ([]domain.Profile, error) {
	return nil, nil
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	return m.CreateFunc(ctx, profile)
}

func (m *mockProfileRepo) Update(context.Context, *domain.Profile) error { return nil }

type mockSessionRepo struct {
	sessions map[string]*domain.Session
	extended map[string]int
}

var _ repository.SessionRepository = (*mockSessionRepo)(nil)

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		sessions: make(map[string]*domain.Session),
		extended: make(map[string]int),
	}
}

func (m *mockSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *mockSessionRepo) Save(_ context.Context, session *domain.Session) error {
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) Extend(_ context.Context, id string, ttlSeconds int) error {
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	m.extended[id] = ttlSeconds
	return nil
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	sessions := newMockSessionRepo()
	profiles := &mockProfileRepo{
		CreateFunc: func(_ context.Context, profile *domain.Profile) (*domain.Profile, error) {
			profile.ID = "profile-1"
			return profile, nil
		},
	}
	uc := New(profiles, sessions, "test-secret", "sustaingain", time.Hour, nil)

	creds, err := uc.Register(context.Background(), "alice", "hi there")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if creds.Profile.Username != "alice" {
		t.Errorf("username = %q, want alice", creds.Profile.Username)
	}
	if _, ok := sessions.sessions[creds.Session.ID]; !ok {
		t.Error("session was not persisted")
	}

	token, err := jwt.Parse(creds.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["profile_id"] != "profile-1" {
		t.Errorf("profile_id claim = %v, want profile-1", claims["profile_id"])
	}
	if claims["session_id"] != creds.Session.ID {
		t.Errorf("session_id claim = %v, want %s", claims["session_id"], creds.Session.ID)
	}
	if claims["iss"] != "sustaingain" {
		t.Errorf("iss claim = %v", claims["iss"])
	}
}

func TestRegisterRequiresUsername(t *testing.T) {
	uc := New(&mockProfileRepo{}, newMockSessionRepo(), "s", "i", time.Hour, nil)
	if _, err := uc.Register(context.Background(), "", ""); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("err = %v, want INVALID", err)
	}
}

func TestLoginUnknownUsernameIsUnauthorized(t *testing.T) {
	profiles := &mockProfileRepo{
		GetByUsernameFunc: func(context.Context, string) (*domain.Profile, error) {
			return nil, domain.ErrProfileNotFound
		},
	}
	uc := New(profiles, newMockSessionRepo(), "s", "i", time.Hour, nil)
	if _, err := uc.Login(context.Background(), "ghost"); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
}

func TestResolveEvictsExpiredSession(t *testing.T) {
	sessions := newMockSessionRepo()
	sessions.sessions["expired"] = &domain.Session{
		ID:        "expired",
		ProfileID: "profile-1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	profiles := &mockProfileRepo{
		GetByIDFunc: func(context.Context, string) (*domain.Profile, error) {
			t.Fatal("profile lookup should not happen for an expired session")
			return nil, nil
		},
	}
	uc := New(profiles, sessions, "s", "i", time.Hour, nil)

	if _, err := uc.Resolve(context.Background(), "expired"); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
	if _, ok := sessions.sessions["expired"]; ok {
		t.Error("expired session should have been evicted")
	}
}

func TestRefreshExtendsSession(t *testing.T) {
	sessions := newMockSessionRepo()
	sessions.sessions["live"] = &domain.Session{
		ID:        "live",
		ProfileID: "profile-1",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	uc := New(&mockProfileRepo{}, sessions, "s", "i", time.Hour, nil)

	session, err := uc.Refresh(context.Background(), "live")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if sessions.extended["live"] != 3600 {
		t.Errorf("extended ttl = %d, want 3600", sessions.extended["live"])
	}
	if !session.ExpiresAt.After(time.Now().Add(50 * time.Minute)) {
		t.Error("returned session expiry was not pushed out")
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	sessions := newMockSessionRepo()
	sessions.sessions["live"] = &domain.Session{ID: "live"}
	uc := New(&mockProfileRepo{}, sessions, "s", "i", time.Hour, nil)

	if err := uc.Logout(context.Background(), "live"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := sessions.sessions["live"]; ok {
		t.Error("session should be gone after logout")
	}
}
