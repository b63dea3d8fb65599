// Package helpers provides shared fixtures for integration tests.
package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/middleware"
)

// SignAccessToken mints a short-lived token for the given identity
func SignAccessToken(t *testing.T, secret string, userID uuid.UUID, role string) string {
	t.Helper()

	claims := &middleware.Claims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// InsertUser seeds a user row and returns its ID
func InsertUser(t *testing.T, pool *pgxpool.Pool, role string, identityVerified bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, username, role, identity_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW() - INTERVAL '30 days', NOW())`,
		id, id.String()+"@example.com", "u_"+id.String()[:8], role, identityVerified)
	require.NoError(t, err)
	return id
}

// InsertTask seeds an active task row and returns its ID
func InsertTask(t *testing.T, pool *pgxpool.Pool, points int, daily bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO tasks (id, title, points, is_active, is_daily, created_at, updated_at)
		VALUES ($1, $2, $3, true, $4, NOW(), NOW())`,
		id, "task "+id.String()[:8], points, daily)
	require.NoError(t, err)
	return id
}

// UserPoints reads a user's current balance
func UserPoints(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) int64 {
	t.Helper()

	var points int64
	err := pool.QueryRow(context.Background(),
		`SELECT total_points FROM users WHERE id = $1`, userID).Scan(&points)
	require.NoError(t, err)
	return points
}

// CleanTables truncates the domain tables between tests
func CleanTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`TRUNCATE completions, audit_log, tasks, users CASCADE`)
	require.NoError(t, err)
}
