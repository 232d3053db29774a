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

type leagueRepository struct {
	pool *pgxpool.Pool
}

// NewLeagueRepository returns a Postgres-backed LeagueRepository.
func NewLeagueRepository(pool *pgxpool.Pool) repository.LeagueRepository {
	return &leagueRepository{pool: pool}
}

const leagueColumns = `id, name, description, visibility, invite_only, created_at`

func (r *leagueRepository) GetByID(ctx context.Context, id string) (*domain.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1`
	return scanLeague(r.pool.QueryRow(ctx, query, id))
}

func (r *leagueRepository) GetByName(ctx context.Context, name string) (*domain.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE name = $1`
	return scanLeague(r.pool.QueryRow(ctx, query, name))
}

func (r *leagueRepository) List(ctx context.Context, filter repository.LeagueFilter) ([]domain.League, error) {
	query := `
	SELECT ` + leagueColumns + `
	FROM leagues
	WHERE ($1 = '' OR visibility = $1)
	ORDER BY name
	LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, string(filter.Visibility), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leagues []domain.League
	for rows.Next() {
		league, err := scanLeague(rows)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, *league)
	}
	return leagues, rows.Err()
}

func (r *leagueRepository) Create(ctx context.Context, league *domain.League) (*domain.League, error) {
	if league == nil {
		return nil, domain.ErrInvalidPayload
	}
	if league.ID == "" {
		league.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO leagues (id, name, description, visibility, invite_only)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (name) DO NOTHING
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		league.ID,
		league.Name,
		league.Description,
		string(league.Visibility),
		league.InviteOnly,
	).Scan(&league.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.StateConflictf("a league named %q already exists", league.Name)
		}
		return nil, err
	}
	return league, nil
}

func (r *leagueRepository) Update(ctx context.Context, league *domain.League) error {
	if league == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE leagues
	SET name = $2, description = $3, visibility = $4, invite_only = $5
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		league.ID, league.Name, league.Description, string(league.Visibility), league.InviteOnly)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeagueNotFound
	}
	return nil
}

func (r *leagueRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leagues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeagueNotFound
	}
	return nil
}

func (r *leagueRepository) GetMember(ctx context.Context, leagueID, profileID string) (*domain.LeagueMember, error) {
	const query = `
	SELECT league_id, profile_id, status, role, created_at
	FROM league_members
	WHERE league_id = $1 AND profile_id = $2
	`
	return scanMember(r.pool.QueryRow(ctx, query, leagueID, profileID))
}

func (r *leagueRepository) ListMembers(ctx context.Context, leagueID string, status domain.MemberStatus) ([]domain.LeagueMember, error) {
	const query = `
	SELECT league_id, profile_id, status, role, created_at
	FROM league_members
	WHERE league_id = $1 AND ($2 = '' OR status = $2)
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, leagueID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.LeagueMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

func (r *leagueRepository) UpsertMember(ctx context.Context, member *domain.LeagueMember) error {
	if member == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO league_members (league_id, profile_id, status, role)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (league_id, profile_id) DO UPDATE
	SET status = EXCLUDED.status,
		role = EXCLUDED.role
	RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query,
		member.LeagueID,
		member.ProfileID,
		string(member.Status),
		string(member.Role),
	).Scan(&member.CreatedAt)
}

// SetRole demotes or promotes. With requireOtherAdmin the admin rows are
// locked and counted in the same transaction, so concurrent demotions can
// never leave the league admin-less.
func (r *leagueRepository) SetRole(ctx context.Context, leagueID, profileID string, role domain.MemberRole, requireOtherAdmin bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if requireOtherAdmin {
		if err := r.checkOtherAdmin(ctx, tx, leagueID, profileID); err != nil {
			return err
		}
	}

	const query = `
	UPDATE league_members
	SET role = $3
	WHERE league_id = $1 AND profile_id = $2
	`
	tag, err := tx.Exec(ctx, query, leagueID, profileID, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return tx.Commit(ctx)
}

func (r *leagueRepository) DeleteMember(ctx context.Context, leagueID, profileID string, requireOtherAdmin bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if requireOtherAdmin {
		if err := r.checkOtherAdmin(ctx, tx, leagueID, profileID); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM league_members WHERE league_id = $1 AND profile_id = $2`,
		leagueID, profileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return tx.Commit(ctx)
}

func (r *leagueRepository) checkOtherAdmin(ctx context.Context, tx pgx.Tx, leagueID, profileID string) error {
	// Locking clauses cannot wrap aggregates, so lock the other admins'
	// rows and count them here.
	const query = `
	SELECT profile_id
	FROM league_members
	WHERE league_id = $1 AND profile_id <> $2 AND role = 'admin' AND status = 'joined'
	FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, leagueID, profileID)
	if err != nil {
		return err
	}
	var others int
	for rows.Next() {
		others++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if others == 0 {
		return domain.StateConflictf("league would be left without an admin")
	}
	return nil
}

func scanLeague(row interface {
	Scan(dest ...interface{}) error
}) (*domain.League, error) {
	var league domain.League
	if err := row.Scan(
		&league.ID,
		&league.Name,
		&league.Description,
		&league.Visibility,
		&league.InviteOnly,
		&league.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeagueNotFound
		}
		return nil, err
	}
	return &league, nil
}

func scanMember(row interface {
	Scan(dest ...interface{}) error
}) (*domain.LeagueMember, error) {
	var member domain.LeagueMember
	if err := row.Scan(
		&member.LeagueID,
		&member.ProfileID,
		&member.Status,
		&member.Role,
		&member.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}
