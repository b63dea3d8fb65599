package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles recognized by the access-control middleware
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User owns the cumulative points balance. TotalPoints is only ever mutated
// through atomic increments applied by approval transitions.
type User struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	Username         string    `json:"username" db:"username"`
	Role             string    `json:"role" db:"role"`
	TotalPoints      int64     `json:"total_points" db:"total_points"`
	IdentityVerified bool      `json:"identity_verified" db:"identity_verified"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
