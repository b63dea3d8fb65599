package completion

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
)

const completionColumns = `
	id, user_id, task_id, completed_at, points_awarded, status,
	verification_status, needs_review, fraud_score, rejection_reason,
	missed_at, reviewed_by, reviewed_at, auto_approve_at, submitted_ip,
	created_at, updated_at
`

// Repository handles completion data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new completion repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new completion. A duplicate claim within the task's
// uniqueness window surfaces as a conflict error.
func (r *Repository) Create(ctx context.Context, completion *Completion, dedupeKey string) error {
	query := `
		INSERT INTO completions (
			id, user_id, task_id, completed_at, points_awarded, status,
			verification_status, needs_review, fraud_score, auto_approve_at,
			submitted_ip, dedupe_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		completion.ID,
		completion.UserID,
		completion.TaskID,
		completion.CompletedAt,
		completion.PointsAwarded,
		completion.Status,
		completion.VerificationStatus,
		completion.NeedsReview,
		completion.FraudScore,
		completion.AutoApproveAt,
		completion.SubmittedIP,
		dedupeKey,
		completion.CreatedAt,
		completion.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return common.NewConflictError("task already completed")
	}

	return err
}

// GetByID retrieves a completion by ID
func (r *Repository) GetByID(ctx context.Context, completionID uuid.UUID) (*Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions WHERE id = $1`

	c, err := scanCompletion(r.db.QueryRow(ctx, query, completionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("completion not found")
		}
		return nil, err
	}

	return c, nil
}

// Approve transitions a pending completion to approved and credits the task's
// points to the user. Both writes happen in one transaction; the status
// predicate is part of the UPDATE so a retried call cannot credit twice.
func (r *Repository) Approve(ctx context.Context, completionID, reviewerID uuid.UUID) (*Completion, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	approveQuery := `
		UPDATE completions c
		SET status = 'approved',
		    verification_status = 'verified',
		    points_awarded = t.points,
		    reviewed_by = $2,
		    reviewed_at = NOW(),
		    updated_at = NOW()
		FROM tasks t
		WHERE c.id = $1
		  AND c.task_id = t.id
		  AND c.status = 'pending'
		RETURNING c.user_id, t.points
	`

	var userID uuid.UUID
	var points int
	err = tx.QueryRow(ctx, approveQuery, completionID, reviewerID).Scan(&userID, &points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissedTransition(ctx, completionID)
		}
		return nil, err
	}

	creditQuery := `
		UPDATE users
		SET total_points = total_points + $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, creditQuery, userID, points); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, completionID)
}

// Reject transitions a pending completion to rejected. No points are credited.
func (r *Repository) Reject(ctx context.Context, completionID, reviewerID uuid.UUID, reason string) (*Completion, error) {
	query := `
		UPDATE completions
		SET status = 'rejected',
		    verification_status = 'flagged',
		    rejection_reason = $3,
		    reviewed_by = $2,
		    reviewed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
	`

	tag, err := r.db.Exec(ctx, query, completionID, reviewerID, reason)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, r.classifyMissedTransition(ctx, completionID)
	}

	return r.GetByID(ctx, completionID)
}

// ListByStatus retrieves completions in a given state with total count
func (r *Repository) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Completion, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM completions WHERE status = $1`
	if err := r.db.QueryRow(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + completionColumns + `
		FROM completions
		WHERE status = $1
		ORDER BY needs_review DESC, fraud_score DESC, completed_at ASC
		LIMIT $2 OFFSET $3
	`

	return r.queryList(ctx, query, total, status, limit, offset)
}

// ListByUser retrieves a user's completions with total count
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Completion, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM completions WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + completionColumns + `
		FROM completions
		WHERE user_id = $1
		ORDER BY completed_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryList(ctx, query, total, userID, limit, offset)
}

func (r *Repository) queryList(ctx context.Context, query string, total int64, args ...any) ([]*Completion, int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	completions := make([]*Completion, 0)
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			continue
		}
		completions = append(completions, c)
	}

	return completions, total, rows.Err()
}

// classifyMissedTransition distinguishes a missing row from one that has
// already left the pending state.
func (r *Repository) classifyMissedTransition(ctx context.Context, completionID uuid.UUID) error {
	var status Status
	err := r.db.QueryRow(ctx, `SELECT status FROM completions WHERE id = $1`, completionID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("completion not found")
		}
		return err
	}
	return common.NewConflictError("already processed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompletion(row rowScanner) (*Completion, error) {
	var c Completion

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.TaskID,
		&c.CompletedAt,
		&c.PointsAwarded,
		&c.Status,
		&c.VerificationStatus,
		&c.NeedsReview,
		&c.FraudScore,
		&c.RejectionReason,
		&c.MissedAt,
		&c.ReviewedBy,
		&c.ReviewedAt,
		&c.AutoApproveAt,
		&c.SubmittedIP,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
