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

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, title, description, points, time_to_repeat_seconds, category_id, rarity, is_bomb, bomb_time_limit_seconds, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR category_id = $1)
	  AND ($2 = 0 OR rarity = $2)
	ORDER BY created_at
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.CategoryID, int(filter.Rarity), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, description, points, time_to_repeat_seconds, category_id, rarity, is_bomb, bomb_time_limit_seconds)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Points,
		durationToSeconds(task.TimeToRepeat),
		task.CategoryID,
		int(task.Rarity),
		task.IsBomb,
		durationToSeconds(task.BombTimeLimit),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		points = $4,
		time_to_repeat_seconds = $5,
		category_id = $6,
		rarity = $7,
		is_bomb = $8,
		bomb_time_limit_seconds = $9,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Points,
		durationToSeconds(task.TimeToRepeat),
		task.CategoryID,
		int(task.Rarity),
		task.IsBomb,
		durationToSeconds(task.BombTimeLimit),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return domain.ErrTaskInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		repeatSeconds int64
		rarity        int
		bombSeconds   int64
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Points,
		&repeatSeconds,
		&task.CategoryID,
		&rarity,
		&task.IsBomb,
		&bombSeconds,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.TimeToRepeat = secondsToDuration(repeatSeconds)
	task.Rarity = domain.Rarity(rarity)
	task.BombTimeLimit = secondsToDuration(bombSeconds)
	return &task, nil
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a Postgres-backed CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) repository.CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.TaskCategory, error) {
	var category domain.TaskCategory
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM task_categories WHERE id = $1`, id).
		Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.TaskCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM task_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.TaskCategory
	for rows.Next() {
		var category domain.TaskCategory
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.TaskCategory) (*domain.TaskCategory, error) {
	if category == nil || category.Name == "" {
		return nil, domain.ErrInvalidPayload
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if _, err := r.pool.Exec(ctx, `INSERT INTO task_categories (id, name) VALUES ($1, $2)`, category.ID, category.Name); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete refuses to remove a category that tasks still reference. The check
// and the delete run in one transaction so a concurrent task insert cannot
// slip between them.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var inUse int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE category_id = $1`, id).Scan(&inUse); err != nil {
		return err
	}
	if inUse > 0 {
		return domain.ErrCategoryInUse
	}

	tag, err := tx.Exec(ctx, `DELETE FROM task_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return tx.Commit(ctx)
}
