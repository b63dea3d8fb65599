package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service implements the audit trail
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new audit service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// RecordChange persists one administrative decision with before/after snapshots
func (s *Service) RecordChange(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, before, after any) error {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return fmt.Errorf("marshal before state: %w", err)
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return fmt.Errorf("marshal after state: %w", err)
	}

	entry := &Entry{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Before:     beforeJSON,
		After:      afterJSON,
		CreatedAt:  time.Now().UTC(),
	}

	return s.repo.Create(ctx, entry)
}

// ListForEntity retrieves the audit trail for one entity
func (s *Service) ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*Entry, int64, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID, limit, offset)
}

// ListRecent retrieves the newest audit entries
func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]*Entry, int64, error) {
	return s.repo.List(ctx, limit, offset)
}
