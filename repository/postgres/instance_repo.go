package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/repository"
)

type instanceRepository struct {
	pool *pgxpool.Pool
}

// NewInstanceRepository returns a Postgres-backed InstanceRepository.
func NewInstanceRepository(pool *pgxpool.Pool) repository.InstanceRepository {
	return &instanceRepository{pool: pool}
}

const instanceColumns = `i.id, i.task_id, i.profile_id, i.time_accepted, i.time_completed, i.status, i.photo_ref, i.note, i.location, i.origin_message, i.tagged, i.tagged_whom`

const insertInstanceQuery = `
	INSERT INTO task_instances (id, task_id, profile_id, time_accepted, status, photo_ref, note, location, origin_message, tagged, tagged_whom)
	VALUES ($1, $2, $3, COALESCE($4, NOW()), $5, $6, $7, $8, $9, $10, $11)
	RETURNING time_accepted
	`

func (r *instanceRepository) GetByID(ctx context.Context, id string) (*domain.TaskInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM task_instances i WHERE i.id = $1`
	inst, err := scanInstance(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadSets(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *instanceRepository) List(ctx context.Context, filter repository.InstanceFilter) ([]domain.TaskInstance, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}
	profileIDs := filter.ProfileIDs
	if filter.ProfileID != "" {
		profileIDs = append(profileIDs, filter.ProfileID)
	}

	query := `
	SELECT ` + instanceColumns + `
	FROM task_instances i
	WHERE (cardinality($1::text[]) = 0 OR i.profile_id = ANY($1))
	  AND ($2 = '' OR i.task_id = $2)
	  AND (cardinality($3::text[]) = 0 OR i.status = ANY($3))
	  AND (NOT $4 OR i.status <> 'ACTIVE')
	ORDER BY COALESCE(i.time_completed, i.time_accepted) DESC
	LIMIT $5 OFFSET $6
	`
	rows, err := r.pool.Query(ctx, query,
		profileIDs, filter.TaskID, statuses, filter.ExcludeActive,
		clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []domain.TaskInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for idx := range instances {
		if err := r.loadSets(ctx, &instances[idx]); err != nil {
			return nil, err
		}
	}
	return instances, nil
}

func (r *instanceRepository) Create(ctx context.Context, instance *domain.TaskInstance) (*domain.TaskInstance, error) {
	if instance == nil {
		return nil, domain.ErrInvalidPayload
	}
	if instance.ID == "" {
		instance.ID = uuid.NewString()
	}

	var accepted interface{}
	if !instance.TimeAccepted.IsZero() {
		accepted = instance.TimeAccepted
	}
	if err := r.pool.QueryRow(ctx, insertInstanceQuery,
		instance.ID,
		instance.TaskID,
		instance.ProfileID,
		accepted,
		string(instance.Status),
		instance.PhotoRef,
		instance.Note,
		instance.Location,
		instance.OriginMessage,
		instance.Tagged,
		instance.TaggedWhom,
	).Scan(&instance.TimeAccepted); err != nil {
		if isPgError(err, pgUniqueViolation) {
			// The partial unique index on live attempts re-validates the
			// availability precondition at commit time.
			return nil, domain.StateConflictf("profile already has a live attempt at this task")
		}
		return nil, err
	}
	return instance, nil
}

func (r *instanceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM task_instances WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}

// UpdateStatusIf is the single write path for transitions. The WHERE clause
// re-validates the precondition so a lost update cannot double-transition.
func (r *instanceRepository) UpdateStatusIf(ctx context.Context, id string, expect, next domain.InstanceStatus, completedAt *time.Time) error {
	const query = `
	UPDATE task_instances
	SET status = $3,
		time_completed = COALESCE($4, time_completed)
	WHERE id = $1 AND status = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, string(expect), string(next), nullTime(completedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.conflictOrNotFound(ctx, id, expect)
	}
	return nil
}

func (r *instanceRepository) SubmitCompletion(ctx context.Context, id string, next domain.InstanceStatus, completedAt time.Time, photoRef, note, location string) error {
	const query = `
	UPDATE task_instances
	SET status = $2,
		time_completed = $3,
		photo_ref = $4,
		note = $5,
		location = $6
	WHERE id = $1 AND status = 'ACTIVE'
	`
	tag, err := r.pool.Exec(ctx, query, id, string(next), completedAt, photoRef, note, location)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.conflictOrNotFound(ctx, id, domain.StatusActive)
	}
	return nil
}

// CreateFromTag spends the source's single outgoing tag and inserts the
// target's instance in one transaction: either both land or neither does.
func (r *instanceRepository) CreateFromTag(ctx context.Context, sourceID string, instance *domain.TaskInstance) (*domain.TaskInstance, error) {
	if instance == nil {
		return nil, domain.ErrInvalidPayload
	}
	if instance.ID == "" {
		instance.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const mark = `
	UPDATE task_instances
	SET tagged = TRUE, tagged_whom = $2
	WHERE id = $1 AND tagged = FALSE
	`
	tag, err := tx.Exec(ctx, mark, sourceID, instance.ProfileID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, sourceID); err != nil {
			return nil, err
		}
		return nil, domain.StateConflictf("instance already tagged someone")
	}

	var accepted interface{}
	if !instance.TimeAccepted.IsZero() {
		accepted = instance.TimeAccepted
	}
	if err := tx.QueryRow(ctx, insertInstanceQuery,
		instance.ID,
		instance.TaskID,
		instance.ProfileID,
		accepted,
		string(instance.Status),
		instance.PhotoRef,
		instance.Note,
		instance.Location,
		instance.OriginMessage,
		instance.Tagged,
		instance.TaggedWhom,
	).Scan(&instance.TimeAccepted); err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, domain.StateConflictf("profile already has a live attempt at this task")
		}
		return nil, err
	}
	return instance, tx.Commit(ctx)
}

func (r *instanceRepository) AddLike(ctx context.Context, instanceID, profileID string) (int, error) {
	return r.addToSet(ctx, "instance_likes", instanceID, profileID)
}

func (r *instanceRepository) AddReport(ctx context.Context, instanceID, profileID string) (int, error) {
	return r.addToSet(ctx, "instance_reports", instanceID, profileID)
}

// addToSet inserts idempotently and counts in the same transaction, so
// concurrent peers never lose an entry and each caller observes a count at
// least as large as its own insertion.
func (r *instanceRepository) addToSet(ctx context.Context, table, instanceID, profileID string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	insert := fmt.Sprintf(`INSERT INTO %s (instance_id, profile_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table)
	if _, err := tx.Exec(ctx, insert, instanceID, profileID); err != nil {
		return 0, err
	}

	var count int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE instance_id = $1`, table)
	if err := tx.QueryRow(ctx, countQuery, instanceID).Scan(&count); err != nil {
		return 0, err
	}
	return count, tx.Commit(ctx)
}

func (r *instanceRepository) Restore(ctx context.Context, id string, completedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM instance_reports WHERE instance_id = $1`, id); err != nil {
		return err
	}

	const query = `
	UPDATE task_instances
	SET status = 'COMPLETED',
		time_completed = COALESCE(time_completed, $2)
	WHERE id = $1
	`
	tag, err := tx.Exec(ctx, query, id, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInstanceNotFound
	}
	return tx.Commit(ctx)
}

func (r *instanceRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.TaskInstance, error) {
	query := `
	SELECT ` + instanceColumns + `
	FROM task_instances i
	WHERE i.status = 'PENDING' AND i.time_completed < $1
	ORDER BY i.time_completed
	`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []domain.TaskInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, *inst)
	}
	return instances, rows.Err()
}

func (r *instanceRepository) ListActiveBombs(ctx context.Context) ([]repository.InstanceWithTask, error) {
	query := `
	SELECT ` + instanceColumns + `, ` + aliasedTaskColumns(`t`) + `
	FROM task_instances i
	JOIN tasks t ON t.id = i.task_id
	WHERE t.is_bomb = TRUE AND i.status = 'ACTIVE'
	ORDER BY i.time_accepted
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []repository.InstanceWithTask
	for rows.Next() {
		var (
			pair          repository.InstanceWithTask
			completed     *time.Time
			repeatSeconds int64
			rarity        int
			bombSeconds   int64
		)
		if err := rows.Scan(
			&pair.Instance.ID,
			&pair.Instance.TaskID,
			&pair.Instance.ProfileID,
			&pair.Instance.TimeAccepted,
			&completed,
			&pair.Instance.Status,
			&pair.Instance.PhotoRef,
			&pair.Instance.Note,
			&pair.Instance.Location,
			&pair.Instance.OriginMessage,
			&pair.Instance.Tagged,
			&pair.Instance.TaggedWhom,
			&pair.Task.ID,
			&pair.Task.Title,
			&pair.Task.Description,
			&pair.Task.Points,
			&repeatSeconds,
			&pair.Task.CategoryID,
			&rarity,
			&pair.Task.IsBomb,
			&bombSeconds,
			&pair.Task.CreatedAt,
			&pair.Task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		pair.Instance.TimeCompleted = completed
		pair.Task.TimeToRepeat = secondsToDuration(repeatSeconds)
		pair.Task.Rarity = domain.Rarity(rarity)
		pair.Task.BombTimeLimit = secondsToDuration(bombSeconds)
		result = append(result, pair)
	}
	return result, rows.Err()
}

func (r *instanceRepository) CountActive(ctx context.Context, profileID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM task_instances WHERE profile_id = $1 AND status = 'ACTIVE'`,
		profileID).Scan(&count)
	return count, err
}

func (r *instanceRepository) SumPoints(ctx context.Context, profileID string) (int, error) {
	const query = `
	SELECT COALESCE(SUM(CASE i.status WHEN 'COMPLETED' THEN t.points ELSE -t.points END), 0)
	FROM task_instances i
	JOIN tasks t ON t.id = i.task_id
	WHERE i.profile_id = $1 AND i.status IN ('COMPLETED', 'EXPLODED')
	`
	var total int
	err := r.pool.QueryRow(ctx, query, profileID).Scan(&total)
	return total, err
}

func (r *instanceRepository) conflictOrNotFound(ctx context.Context, id string, expect domain.InstanceStatus) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return domain.StateConflictf("instance is %s, expected %s", current.Status, expect)
}

func (r *instanceRepository) loadSets(ctx context.Context, inst *domain.TaskInstance) error {
	likes, err := r.setMembers(ctx, "instance_likes", inst.ID)
	if err != nil {
		return err
	}
	reports, err := r.setMembers(ctx, "instance_reports", inst.ID)
	if err != nil {
		return err
	}
	inst.Likes = likes
	inst.Reports = reports
	return nil
}

func (r *instanceRepository) setMembers(ctx context.Context, table, instanceID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT profile_id FROM %s WHERE instance_id = $1 ORDER BY profile_id`, table)
	rows, err := r.pool.Query(ctx, query, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func scanInstance(row interface {
	Scan(dest ...interface{}) error
}) (*domain.TaskInstance, error) {
	var inst domain.TaskInstance
	var completed *time.Time
	if err := row.Scan(
		&inst.ID,
		&inst.TaskID,
		&inst.ProfileID,
		&inst.TimeAccepted,
		&completed,
		&inst.Status,
		&inst.PhotoRef,
		&inst.Note,
		&inst.Location,
		&inst.OriginMessage,
		&inst.Tagged,
		&inst.TaggedWhom,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, err
	}
	inst.TimeCompleted = completed
	return &inst, nil
}

// aliasedTaskColumns prefixes the tasks column list for joined queries.
func aliasedTaskColumns(alias string) string {
	return alias + `.id, ` + alias + `.title, ` + alias + `.description, ` + alias + `.points, ` +
		alias + `.time_to_repeat_seconds, ` + alias + `.category_id, ` + alias + `.rarity, ` +
		alias + `.is_bomb, ` + alias + `.bomb_time_limit_seconds, ` + alias + `.created_at, ` + alias + `.updated_at`
}
