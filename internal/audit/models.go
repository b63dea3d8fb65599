package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry records one administrative state change with its before/after snapshots
type Entry struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ActorID    uuid.UUID       `json:"actor_id" db:"actor_id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	Before     json.RawMessage `json:"before,omitempty" db:"before_state"`
	After      json.RawMessage `json:"after,omitempty" db:"after_state"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
