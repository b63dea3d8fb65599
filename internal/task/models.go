package task

import (
	"time"

	"github.com/google/uuid"
)

// Task is a completable unit of work worth a fixed number of points
type Task struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Points      int       `json:"points" db:"points"`

	// DurationHours limits how long the task stays open. ExpiresAt is derived
	// from it at creation time; a nil duration means the task never expires.
	DurationHours *int       `json:"duration_hours,omitempty" db:"duration_hours"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" db:"expires_at"`

	IsActive bool `json:"is_active" db:"is_active"`
	IsDaily  bool `json:"is_daily" db:"is_daily"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether a time-limited task has passed its deadline.
// Expiry is interpreted, never written back to the task row.
func (t *Task) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// IsCompletable reports whether the task currently accepts submissions
func (t *Task) IsCompletable(now time.Time) bool {
	return t.IsActive && !t.IsExpired(now)
}

// CreateTaskRequest is the admin payload for creating a task
type CreateTaskRequest struct {
	Title         string `json:"title" binding:"required" validate:"required,min=3,max=200"`
	Description   string `json:"description" validate:"max=2000"`
	Points        int    `json:"points" binding:"required" validate:"required,gt=0"`
	DurationHours *int   `json:"duration_hours,omitempty" validate:"omitempty,gt=0"`
	IsDaily       bool   `json:"is_daily"`
}

// UpdateTaskRequest is the admin payload for updating a task
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Points      *int    `json:"points,omitempty" validate:"omitempty,gt=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
