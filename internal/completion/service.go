package completion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SylvanToken/AirDropWeb-sub006/internal/fraud"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/config"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/eventbus"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/logger"
)

// Default auto-approval delays, overridable via config
const (
	defaultLowRiskDelay    = time.Hour
	defaultMediumRiskDelay = 24 * time.Hour
)

// Service implements the completion lifecycle
type Service struct {
	repo            RepositoryInterface
	tasks           TaskReader
	assessor        Assessor
	audit           AuditRecorder
	bus             EventPublisher
	lowRiskDelay    time.Duration
	mediumRiskDelay time.Duration
}

// NewService creates a new completion service
func NewService(repo RepositoryInterface, tasks TaskReader, assessor Assessor, audit AuditRecorder, bus EventPublisher, cfg *config.PolicyConfig) *Service {
	lowRiskDelay := defaultLowRiskDelay
	mediumRiskDelay := defaultMediumRiskDelay

	if cfg != nil {
		if cfg.AutoApproveDelayLowMinutes > 0 {
			lowRiskDelay = time.Duration(cfg.AutoApproveDelayLowMinutes) * time.Minute
		}
		if cfg.AutoApproveDelayMediumMinutes > 0 {
			mediumRiskDelay = time.Duration(cfg.AutoApproveDelayMediumMinutes) * time.Minute
		}
	}

	return &Service{
		repo:            repo,
		tasks:           tasks,
		assessor:        assessor,
		audit:           audit,
		bus:             bus,
		lowRiskDelay:    lowRiskDelay,
		mediumRiskDelay: mediumRiskDelay,
	}
}

// Submit records a user's claim against a task. The claim is created pending,
// scored, and scheduled for auto-approval when the score allows it.
func (s *Service) Submit(ctx context.Context, userID, taskID uuid.UUID, req *SubmitRequest, submittedIP string) (*Completion, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !t.IsCompletable(now) {
		return nil, common.NewBadRequestError("task is not open for completion", nil)
	}

	var completionTime time.Duration
	if req != nil && req.StartedAt != nil && req.StartedAt.Before(now) {
		completionTime = now.Sub(*req.StartedAt)
	}

	assessment, err := s.assessor.Assess(ctx, userID, submittedIP, completionTime)
	if err != nil {
		return nil, err
	}

	c := &Completion{
		ID:                 uuid.New(),
		UserID:             userID,
		TaskID:             taskID,
		CompletedAt:        now,
		Status:             StatusPending,
		VerificationStatus: assessment.VerificationStatus,
		NeedsReview:        assessment.NeedsReview,
		FraudScore:         assessment.FraudScore,
		AutoApproveAt:      s.autoApproveAt(now, assessment),
		SubmittedIP:        submittedIP,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	dedupeKey := DedupeKey(userID, taskID, t.IsDaily, now)
	if err := s.repo.Create(ctx, c, dedupeKey); err != nil {
		return nil, err
	}

	logger.Info("completion submitted",
		zap.String("completion_id", c.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("task_id", taskID.String()),
		zap.Int("fraud_score", c.FraudScore),
		zap.Bool("needs_review", c.NeedsReview),
	)

	return c, nil
}

// autoApproveAt derives the auto-approval deadline from the risk assessment.
// Completions needing review have no auto-approval path at all.
func (s *Service) autoApproveAt(now time.Time, assessment fraud.Assessment) *time.Time {
	if assessment.NeedsReview {
		return nil
	}

	var delay time.Duration
	switch assessment.RiskLevel {
	case fraud.RiskLow:
		delay = s.lowRiskDelay
	case fraud.RiskMedium:
		delay = s.mediumRiskDelay
	default:
		return nil
	}

	at := now.Add(delay)
	return &at
}

// Review applies an admin's manual decision to a pending completion
func (s *Service) Review(ctx context.Context, completionID, reviewerID uuid.UUID, req *ReviewRequest) (*Completion, error) {
	before, err := s.repo.GetByID(ctx, completionID)
	if err != nil {
		return nil, err
	}

	var after *Completion
	switch req.Action {
	case "approve":
		after, err = s.repo.Approve(ctx, completionID, reviewerID)
	case "reject":
		reason := req.Reason
		if reason == "" {
			reason = DefaultRejectionReason
		}
		after, err = s.repo.Reject(ctx, completionID, reviewerID, reason)
	default:
		return nil, common.NewBadRequestError("invalid action", nil)
	}
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, reviewerID, "completion."+req.Action, before, after)
	s.publishReviewed(ctx, reviewerID, req.Action, after)

	return after, nil
}

// GetCompletion retrieves a single completion
func (s *Service) GetCompletion(ctx context.Context, completionID uuid.UUID) (*Completion, error) {
	return s.repo.GetByID(ctx, completionID)
}

// ListPending retrieves the admin review queue, riskiest first
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*Completion, int64, error) {
	return s.repo.ListByStatus(ctx, StatusPending, limit, offset)
}

// ListUserCompletions retrieves a user's completion history
func (s *Service) ListUserCompletions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Completion, int64, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// recordAudit emits the before/after audit entry. Audit failures are logged
// and never roll back the decision itself.
func (s *Service) recordAudit(ctx context.Context, actorID uuid.UUID, action string, before, after *Completion) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordChange(ctx, actorID, action, "completion", before.ID, before, after); err != nil {
		logger.Error("failed to record audit entry",
			zap.String("completion_id", before.ID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (s *Service) publishReviewed(ctx context.Context, reviewerID uuid.UUID, action string, c *Completion) {
	if s.bus == nil {
		return
	}

	subject := eventbus.SubjectCompletionApproved
	if action == "reject" {
		subject = eventbus.SubjectCompletionRejected
	}

	reviewedAt := time.Now().UTC()
	if c.ReviewedAt != nil {
		reviewedAt = *c.ReviewedAt
	}

	payload := eventbus.CompletionReviewedData{
		CompletionID:  c.ID,
		UserID:        c.UserID,
		TaskID:        c.TaskID,
		ReviewerID:    reviewerID,
		Action:        action,
		PointsAwarded: c.PointsAwarded,
		ReviewedAt:    reviewedAt,
	}

	if err := s.bus.Publish(ctx, subject, payload); err != nil {
		logger.Warn("failed to publish review event",
			zap.String("completion_id", c.ID.String()),
			zap.Error(err),
		)
	}
}
