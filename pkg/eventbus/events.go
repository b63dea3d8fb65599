package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// Subjects for completion lifecycle events
const (
	SubjectCompletionApproved     = "completions.approved"
	SubjectCompletionAutoApproved = "completions.auto_approved"
	SubjectCompletionRejected     = "completions.rejected"
)

// CompletionReviewedData is the payload for manual review decisions
type CompletionReviewedData struct {
	CompletionID  uuid.UUID `json:"completion_id"`
	UserID        uuid.UUID `json:"user_id"`
	TaskID        uuid.UUID `json:"task_id"`
	ReviewerID    uuid.UUID `json:"reviewer_id"`
	Action        string    `json:"action"`
	PointsAwarded int       `json:"points_awarded"`
	ReviewedAt    time.Time `json:"reviewed_at"`
}

// CompletionAutoApprovedData is the payload for sweeper promotions
type CompletionAutoApprovedData struct {
	CompletionID  uuid.UUID `json:"completion_id"`
	UserID        uuid.UUID `json:"user_id"`
	TaskID        uuid.UUID `json:"task_id"`
	PointsAwarded int       `json:"points_awarded"`
	ApprovedAt    time.Time `json:"approved_at"`
}
