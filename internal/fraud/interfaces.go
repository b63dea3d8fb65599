package fraud

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignalRepository defines the storage queries used to gather scoring signals
type SignalRepository interface {
	// CountRecentByIP counts completions submitted from an IP within the window.
	CountRecentByIP(ctx context.Context, ip string, window time.Duration) (int, error)

	// CountRecentByUser counts completions submitted by a user within the window.
	CountRecentByUser(ctx context.Context, userID uuid.UUID, window time.Duration) (int, error)

	// GetAccountProfile fetches account age and identity linkage for a user.
	GetAccountProfile(ctx context.Context, userID uuid.UUID) (*AccountProfile, error)
}
