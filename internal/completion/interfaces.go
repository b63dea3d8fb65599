package completion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SylvanToken/AirDropWeb-sub006/internal/fraud"
	"github.com/SylvanToken/AirDropWeb-sub006/internal/task"
)

// RepositoryInterface defines the contract for completion repository operations
type RepositoryInterface interface {
	// Create inserts a new completion; dedupeKey enforces the one-claim-per
	// window invariant via a unique index.
	Create(ctx context.Context, completion *Completion, dedupeKey string) error

	GetByID(ctx context.Context, completionID uuid.UUID) (*Completion, error)

	// Approve transitions a pending completion to approved and credits the
	// task's points to the user inside one transaction. Non-pending rows
	// yield a conflict error.
	Approve(ctx context.Context, completionID, reviewerID uuid.UUID) (*Completion, error)

	// Reject transitions a pending completion to rejected. Never credits.
	Reject(ctx context.Context, completionID, reviewerID uuid.UUID, reason string) (*Completion, error)

	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Completion, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Completion, int64, error)
}

// TaskReader is the slice of the task repository the completion service needs
type TaskReader interface {
	GetByID(ctx context.Context, taskID uuid.UUID) (*task.Task, error)
}

// Assessor scores a submission (allows mocking the fraud service)
type Assessor interface {
	Assess(ctx context.Context, userID uuid.UUID, submittedIP string, completionTime time.Duration) (fraud.Assessment, error)
}

// AuditRecorder records before/after state for admin decisions
type AuditRecorder interface {
	RecordChange(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, before, after any) error
}

// EventPublisher publishes lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}
