package audit

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the contract for audit repository operations
type RepositoryInterface interface {
	Create(ctx context.Context, entry *Entry) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*Entry, int64, error)
	List(ctx context.Context, limit, offset int) ([]*Entry, int64, error)
}
