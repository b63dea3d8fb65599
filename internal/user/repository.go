package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
)

// Repository handles user data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new user repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, userID uuid.UUID) (*User, error) {
	query := `
		SELECT id, email, username, role, total_points, identity_verified,
		       is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Role,
		&u.TotalPoints,
		&u.IdentityVerified,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found")
		}
		return nil, err
	}

	return &u, nil
}

// ListTopByPoints retrieves active users ordered by points with total count
func (r *Repository) ListTopByPoints(ctx context.Context, limit, offset int) ([]*User, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM users WHERE is_active = true`
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, email, username, role, total_points, identity_verified,
		       is_active, created_at, updated_at
		FROM users
		WHERE is_active = true
		ORDER BY total_points DESC, created_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.Username,
			&u.Role,
			&u.TotalPoints,
			&u.IdentityVerified,
			&u.IsActive,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			continue
		}
		users = append(users, &u)
	}

	return users, total, rows.Err()
}
