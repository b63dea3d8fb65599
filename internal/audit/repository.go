package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles audit log data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new audit repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new audit entry
func (r *Repository) Create(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_log (
			id, actor_id, action, entity_type, entity_id,
			before_state, after_state, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Before,
		entry.After,
		entry.CreatedAt,
	)

	return err
}

// ListByEntity retrieves audit entries for a single entity with total count
func (r *Repository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*Entry, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM audit_log WHERE entity_type = $1 AND entity_id = $2`
	if err := r.db.QueryRow(ctx, countQuery, entityType, entityID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, actor_id, action, entity_type, entity_id,
		       before_state, after_state, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	return r.queryList(ctx, query, total, entityType, entityID, limit, offset)
}

// List retrieves the newest audit entries with total count
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Entry, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM audit_log`
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, actor_id, action, entity_type, entity_id,
		       before_state, after_state, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryList(ctx, query, total, limit, offset)
}

func (r *Repository) queryList(ctx context.Context, query string, total int64, args ...any) ([]*Entry, int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Before,
			&entry.After,
			&entry.CreatedAt,
		)
		if err != nil {
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, total, rows.Err()
}
