package completion

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SylvanToken/AirDropWeb-sub006/internal/fraud"
)

// Status is the lifecycle state of a completion
type Status string

const (
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusAutoApproved Status = "auto_approved"
	StatusRejected     Status = "rejected"
	StatusExpired      Status = "expired"
)

// Default reasons applied when a rejection carries no explicit one
const (
	DefaultRejectionReason = "Task not completed properly"
	StaleRejectionReason   = "Automatically rejected after 48 hours without approval"
)

// Completion records one user's claim against one task
type Completion struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	TaskID uuid.UUID `json:"task_id" db:"task_id"`

	CompletedAt   time.Time `json:"completed_at" db:"completed_at"`
	PointsAwarded int       `json:"points_awarded" db:"points_awarded"`

	Status             Status                   `json:"status" db:"status"`
	VerificationStatus fraud.VerificationStatus `json:"verification_status" db:"verification_status"`
	NeedsReview        bool                     `json:"needs_review" db:"needs_review"`
	FraudScore         int                      `json:"fraud_score" db:"fraud_score"`

	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	MissedAt        *time.Time `json:"missed_at,omitempty" db:"missed_at"`

	ReviewedBy *uuid.UUID `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`

	// AutoApproveAt is when the sweeper may promote a pending low-risk
	// completion. Nil means no auto-approval path.
	AutoApproveAt *time.Time `json:"auto_approve_at,omitempty" db:"auto_approve_at"`

	SubmittedIP string `json:"-" db:"submitted_ip"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DedupeKey identifies the uniqueness window for a (user, task) claim:
// daily tasks allow one completion per calendar day, everything else one
// completion per task.
func DedupeKey(userID, taskID uuid.UUID, daily bool, at time.Time) string {
	if daily {
		return fmt.Sprintf("%s:%s:%s", taskID, userID, at.UTC().Format("2006-01-02"))
	}
	return fmt.Sprintf("%s:%s", taskID, userID)
}

// SubmitRequest is the payload for claiming a task completion
type SubmitRequest struct {
	// StartedAt is when the user began the task; used to derive the
	// completion-time fraud signal.
	StartedAt *time.Time `json:"started_at,omitempty"`

	EvidenceURL string `json:"evidence_url,omitempty" validate:"omitempty,url,max=500"`
}

// ReviewRequest is the admin payload for a manual decision
type ReviewRequest struct {
	Action string `json:"action" binding:"required" validate:"required,review_action"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
