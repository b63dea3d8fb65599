package fraud

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
)

// Repository gathers fraud signals from storage
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ SignalRepository = (*Repository)(nil)

// NewRepository creates a new fraud signal repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CountRecentByIP counts completions submitted from an IP within the window
func (r *Repository) CountRecentByIP(ctx context.Context, ip string, window time.Duration) (int, error) {
	if ip == "" {
		return 0, nil
	}

	query := `
		SELECT COUNT(*)
		FROM completions
		WHERE submitted_ip = $1
		  AND created_at >= NOW() - $2::interval
	`

	var count int
	err := r.db.QueryRow(ctx, query, ip, window.String()).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// CountRecentByUser counts completions submitted by a user within the window
func (r *Repository) CountRecentByUser(ctx context.Context, userID uuid.UUID, window time.Duration) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM completions
		WHERE user_id = $1
		  AND created_at >= NOW() - $2::interval
	`

	var count int
	err := r.db.QueryRow(ctx, query, userID, window.String()).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// GetAccountProfile fetches account age and identity linkage for a user
func (r *Repository) GetAccountProfile(ctx context.Context, userID uuid.UUID) (*AccountProfile, error) {
	query := `
		SELECT EXTRACT(EPOCH FROM (NOW() - created_at)), identity_verified
		FROM users
		WHERE id = $1
	`

	var ageSeconds float64
	var identityVerified bool

	err := r.db.QueryRow(ctx, query, userID).Scan(&ageSeconds, &identityVerified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found")
		}
		return nil, err
	}

	return &AccountProfile{
		AccountAge:       time.Duration(ageSeconds) * time.Second,
		IdentityVerified: identityVerified,
	}, nil
}
