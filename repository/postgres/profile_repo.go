package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, username, bio, image_path, staff, created_at`

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, username))
}

func (r *profileRepository) List(ctx context.Context, filter repository.ProfileFilter) ([]domain.Profile, error) {
	query := `
	SELECT ` + profileColumns + `
	FROM profiles
	ORDER BY username
	LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if profile == nil || profile.Username == "" {
		return nil, domain.ErrInvalidPayload
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO profiles (id, username, bio, image_path, staff)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (username) DO NOTHING
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.Username,
		profile.Bio,
		profile.ImagePath,
		profile.Staff,
	).Scan(&profile.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.StateConflictf("username %q is taken", profile.Username)
		}
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	if profile == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE profiles
	SET bio = $2, image_path = $3, staff = $4
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, profile.ID, profile.Bio, profile.ImagePath, profile.Staff)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func scanProfile(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Profile, error) {
	var profile domain.Profile
	if err := row.Scan(
		&profile.ID,
		&profile.Username,
		&profile.Bio,
		&profile.ImagePath,
		&profile.Staff,
		&profile.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}
