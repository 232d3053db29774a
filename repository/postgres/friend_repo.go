package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

type friendRepository struct {
	pool *pgxpool.Pool
}

// NewFriendRepository returns a Postgres-backed FriendRepository.
func NewFriendRepository(pool *pgxpool.Pool) repository.FriendRepository {
	return &friendRepository{pool: pool}
}

const friendColumns = `id, from_profile_id, to_profile_id, status, created_at, responded_at`

func (r *friendRepository) GetByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	query := `SELECT ` + friendColumns + ` FROM friend_requests WHERE id = $1`
	return scanFriendRequest(r.pool.QueryRow(ctx, query, id))
}

func (r *friendRepository) GetBetween(ctx context.Context, a, b string) (*domain.FriendRequest, error) {
	query := `
	SELECT ` + friendColumns + `
	FROM friend_requests
	WHERE (from_profile_id = $1 AND to_profile_id = $2)
	   OR (from_profile_id = $2 AND to_profile_id = $1)
	`
	return scanFriendRequest(r.pool.QueryRow(ctx, query, a, b))
}

// Create inserts a pending edge after re-checking both directions under the
// same transaction. A unique index on the unordered pair backs this up at
// the schema level.
func (r *friendRepository) Create(ctx context.Context, request *domain.FriendRequest) (*domain.FriendRequest, error) {
	if request == nil || request.FromProfileID == "" || request.ToProfileID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = domain.FriendPending
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Locking clauses cannot wrap aggregates, so lock the matching rows
	// and count them here.
	const check = `
	SELECT id
	FROM friend_requests
	WHERE (from_profile_id = $1 AND to_profile_id = $2)
	   OR (from_profile_id = $2 AND to_profile_id = $1)
	FOR UPDATE
	`
	rows, err := tx.Query(ctx, check, request.FromProfileID, request.ToProfileID)
	if err != nil {
		return nil, err
	}
	var existing int
	for rows.Next() {
		existing++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, domain.StateConflictf("a friend request already exists between these profiles")
	}

	const insert = `
	INSERT INTO friend_requests (id, from_profile_id, to_profile_id, status)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`
	if err := tx.QueryRow(ctx, insert,
		request.ID,
		request.FromProfileID,
		request.ToProfileID,
		string(request.Status),
	).Scan(&request.CreatedAt); err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, domain.StateConflictf("a friend request already exists between these profiles")
		}
		return nil, err
	}
	return request, tx.Commit(ctx)
}

func (r *friendRepository) Accept(ctx context.Context, id string) error {
	const query = `
	UPDATE friend_requests
	SET status = 'accepted', responded_at = NOW()
	WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.StateConflictf("friend request is not pending")
	}
	return nil
}

func (r *friendRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *friendRepository) ListByProfile(ctx context.Context, profileID string, status domain.FriendStatus) ([]domain.FriendRequest, error) {
	query := `
	SELECT ` + friendColumns + `
	FROM friend_requests
	WHERE (from_profile_id = $1 OR to_profile_id = $1) AND status = $2
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, profileID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.FriendRequest
	for rows.Next() {
		req, err := scanFriendRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func scanFriendRequest(row interface {
	Scan(dest ...interface{}) error
}) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	var responded *time.Time
	if err := row.Scan(
		&req.ID,
		&req.FromProfileID,
		&req.ToProfileID,
		&req.Status,
		&req.CreatedAt,
		&responded,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	req.RespondedAt = responded
	return &req, nil
}
