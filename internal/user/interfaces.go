package user

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the contract for user repository operations
type RepositoryInterface interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	ListTopByPoints(ctx context.Context, limit, offset int) ([]*User, int64, error)
}
