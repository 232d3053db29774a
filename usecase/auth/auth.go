package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

// UseCase resolves bearer tokens into profiles and manages the Redis-backed
// session cache. Registration creates the profile explicitly; nothing is
// created as a side effect of other operations.
type UseCase struct {
	profiles repository.ProfileRepository
	sessions repository.SessionRepository
	secret   string
	issuer   string
	ttl      time.Duration
	logger   *zap.Logger
}

func New(
	profiles repository.ProfileRepository,
	sessions repository.SessionRepository,
	secret, issuer string,
	ttl time.Duration,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UseCase{
		profiles: profiles,
		sessions: sessions,
		secret:   secret,
		issuer:   issuer,
		ttl:      ttl,
		logger:   logger,
	}
}

// Credentials is what a successful register or login hands back.
type Credentials struct {
	Profile *domain.Profile `json:"profile"`
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
}

// Register creates a profile for the username and opens a session for it.
// Duplicate usernames surface as CONFLICT from the repository.
func (uc *UseCase) Register(ctx context.Context, username, bio string) (*Credentials, error) {
	if username == "" {
		return nil, domain.Validationf("username is required")
	}
	profile, err := uc.profiles.Create(ctx, &domain.Profile{
		Username: username,
		Bio:      bio,
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("profile registered", zap.String("username", profile.Username))
	return uc.open(ctx, profile)
}

// Login opens a session for an existing profile.
func (uc *UseCase) Login(ctx context.Context, username string) (*Credentials, error) {
	profile, err := uc.profiles.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return uc.open(ctx, profile)
}

func (uc *UseCase) open(ctx context.Context, profile *domain.Profile) (*Credentials, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{
		"profile_id": profile.ID,
		"session_id": session.ID,
		"iss":        uc.issuer,
		"iat":        now.Unix(),
		"exp":        session.ExpiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.secret))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "token signing failed", err)
	}

	return &Credentials{Profile: profile, Token: token, Session: session}, nil
}

// Resolve validates a session ID from a verified token and returns the
// profile it belongs to. Expired sessions are evicted on sight.
func (uc *UseCase) Resolve(ctx context.Context, sessionID string) (*domain.Profile, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthorized
	}
	return uc.profiles.GetByID(ctx, session.ProfileID)
}

// Refresh extends a live session by the configured TTL.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(uc.ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().Add(uc.ttl)
	return session, nil
}

// Logout revokes the session.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}
