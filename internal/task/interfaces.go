package task

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the contract for task repository operations
type RepositoryInterface interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, taskID uuid.UUID) (*Task, error)
	Update(ctx context.Context, task *Task) error
	ListActive(ctx context.Context, limit, offset int) ([]*Task, int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Task, int64, error)
}
