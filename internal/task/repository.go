package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
)

// Repository handles task data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new task repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new task
func (r *Repository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (
			id, title, description, points, duration_hours, expires_at,
			is_active, is_daily, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Points,
		task.DurationHours,
		task.ExpiresAt,
		task.IsActive,
		task.IsDaily,
		task.CreatedAt,
		task.UpdatedAt,
	)

	return err
}

// GetByID retrieves a task by ID
func (r *Repository) GetByID(ctx context.Context, taskID uuid.UUID) (*Task, error) {
	query := `
		SELECT id, title, description, points, duration_hours, expires_at,
		       is_active, is_daily, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("task not found")
		}
		return nil, err
	}

	return task, nil
}

// Update persists mutable task fields
func (r *Repository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET title = $2,
		    description = $3,
		    points = $4,
		    is_active = $5,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Points,
		task.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("task not found")
	}

	return nil
}

// ListActive retrieves active, non-expired tasks with total count
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]*Task, int64, error) {
	where := `WHERE is_active = true AND (expires_at IS NULL OR expires_at > NOW())`
	return r.list(ctx, where, limit, offset)
}

// ListAll retrieves every task with total count
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]*Task, int64, error) {
	return r.list(ctx, "", limit, offset)
}

func (r *Repository) list(ctx context.Context, where string, limit, offset int) ([]*Task, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM tasks ` + where
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, title, description, points, duration_hours, expires_at,
		       is_active, is_daily, created_at, updated_at
		FROM tasks ` + where + `
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]*Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			continue
		}
		tasks = append(tasks, task)
	}

	return tasks, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var task Task
	var durationHours *int
	var expiresAt *time.Time

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Points,
		&durationHours,
		&expiresAt,
		&task.IsActive,
		&task.IsDaily,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.DurationHours = durationHours
	task.ExpiresAt = expiresAt

	return &task, nil
}
