package completion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SylvanToken/AirDropWeb-sub006/internal/fraud"
	"github.com/SylvanToken/AirDropWeb-sub006/internal/task"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/config"
)

// ============================================================================
// Mocks
// ============================================================================

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, completion *Completion, dedupeKey string) error {
	args := m.Called(ctx, completion, dedupeKey)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, completionID uuid.UUID) (*Completion, error) {
	args := m.Called(ctx, completionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Completion), args.Error(1)
}

func (m *MockRepository) Approve(ctx context.Context, completionID, reviewerID uuid.UUID) (*Completion, error) {
	args := m.Called(ctx, completionID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Completion), args.Error(1)
}

func (m *MockRepository) Reject(ctx context.Context, completionID, reviewerID uuid.UUID, reason string) (*Completion, error) {
	args := m.Called(ctx, completionID, reviewerID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Completion), args.Error(1)
}

func (m *MockRepository) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Completion, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Completion), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Completion, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Completion), args.Get(1).(int64), args.Error(2)
}

type MockTaskReader struct {
	mock.Mock
}

func (m *MockTaskReader) GetByID(ctx context.Context, taskID uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

type MockAssessor struct {
	mock.Mock
}

func (m *MockAssessor) Assess(ctx context.Context, userID uuid.UUID, submittedIP string, completionTime time.Duration) (fraud.Assessment, error) {
	args := m.Called(ctx, userID, submittedIP, completionTime)
	return args.Get(0).(fraud.Assessment), args.Error(1)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) RecordChange(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, before, after any) error {
	args := m.Called(ctx, actorID, action, entityType, entityID, before, after)
	return args.Error(0)
}

// ============================================================================
// Test Helpers
// ============================================================================

func activeTask(points int) *task.Task {
	return &task.Task{
		ID:       uuid.New(),
		Title:    "Follow on X",
		Points:   points,
		IsActive: true,
	}
}

func lowRiskAssessment() fraud.Assessment {
	return fraud.Assessment{
		FraudScore:         0,
		RiskLevel:          fraud.RiskLow,
		VerificationStatus: fraud.VerificationUnverified,
	}
}

func flaggedAssessment() fraud.Assessment {
	return fraud.Assessment{
		FraudScore:         60,
		RiskLevel:          fraud.RiskHigh,
		NeedsReview:        true,
		VerificationStatus: fraud.VerificationFlagged,
	}
}

func newTestService(repo RepositoryInterface, tasks TaskReader, assessor Assessor, audit AuditRecorder) *Service {
	return NewService(repo, tasks, assessor, audit, nil, nil)
}

// ============================================================================
// Submit Tests
// ============================================================================

func TestService_Submit(t *testing.T) {
	userID := uuid.New()

	t.Run("low risk submission gets an auto-approval deadline", func(t *testing.T) {
		repo := new(MockRepository)
		tasks := new(MockTaskReader)
		assessor := new(MockAssessor)
		svc := newTestService(repo, tasks, assessor, nil)

		tk := activeTask(100)
		tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)
		assessor.On("Assess", mock.Anything, userID, "203.0.113.7", time.Duration(0)).
			Return(lowRiskAssessment(), nil)
		repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		c, err := svc.Submit(context.Background(), userID, tk.ID, &SubmitRequest{}, "203.0.113.7")

		require.NoError(t, err)
		assert.Equal(t, StatusPending, c.Status)
		assert.Equal(t, fraud.VerificationUnverified, c.VerificationStatus)
		assert.False(t, c.NeedsReview)
		require.NotNil(t, c.AutoApproveAt)
		assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), *c.AutoApproveAt, 5*time.Second)
	})

	t.Run("medium risk submission waits a day", func(t *testing.T) {
		repo := new(MockRepository)
		tasks := new(MockTaskReader)
		assessor := new(MockAssessor)
		svc := newTestService(repo, tasks, assessor, nil)

		tk := activeTask(100)
		tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)
		assessor.On("Assess", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(fraud.Assessment{
				FraudScore:         30,
				RiskLevel:          fraud.RiskMedium,
				VerificationStatus: fraud.VerificationUnverified,
			}, nil)
		repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		c, err := svc.Submit(context.Background(), userID, tk.ID, nil, "")

		require.NoError(t, err)
		require.NotNil(t, c.AutoApproveAt)
		assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), *c.AutoApproveAt, 5*time.Second)
	})

	t.Run("flagged submission has no auto-approval path", func(t *testing.T) {
		repo := new(MockRepository)
		tasks := new(MockTaskReader)
		assessor := new(MockAssessor)
		svc := newTestService(repo, tasks, assessor, nil)

		tk := activeTask(100)
		tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)
		assessor.On("Assess", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(flaggedAssessment(), nil)
		repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		c, err := svc.Submit(context.Background(), userID, tk.ID, nil, "")

		require.NoError(t, err)
		assert.Nil(t, c.AutoApproveAt)
		assert.True(t, c.NeedsReview)
		assert.Equal(t, fraud.VerificationFlagged, c.VerificationStatus)
		assert.Equal(t, StatusPending, c.Status)
	})

	t.Run("started_at drives the completion time signal", func(t *testing.T) {
		repo := new(MockRepository)
		tasks := new(MockTaskReader)
		assessor := new(MockAssessor)
		svc := newTestService(repo, tasks, assessor, nil)

		tk := activeTask(100)
		startedAt := time.Now().UTC().Add(-2 * time.Second)
		tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)
		assessor.On("Assess", mock.Anything, userID, mock.Anything,
			mock.MatchedBy(func(d time.Duration) bool {
				return d >= 2*time.Second && d < 3*time.Second
			})).
			Return(flaggedAssessment(), nil)
		repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Submit(context.Background(), userID, tk.ID, &SubmitRequest{StartedAt: &startedAt}, "")

		require.NoError(t, err)
		assessor.AssertExpectations(t)
	})

	t.Run("inactive task is rejected before scoring", func(t *testing.T) {
		repo := new(MockRepository)
		tasks := new(MockTaskReader)
		assessor := new(MockAssessor)
		svc := newTestService(repo, tasks, assessor, nil)

		tk := activeTask(100)
		tk.IsActive = false
		tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)

		_, err := svc.Submit(context.Background(), userID, tk.ID, nil, "")

		require.Error(t, err)
		appErr, ok := common.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, common.ErrorTypeValidation, appErr.Type)
		assessor.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired task is rejected before scoring", func(t *testing.T) {
		repo := new(MockRepository)
		tasks := new(MockTaskReader)
		assessor := new(MockAssessor)
		svc := newTestService(repo, tasks, assessor, nil)

		tk := activeTask(100)
		past := time.Now().UTC().Add(-time.Hour)
		tk.ExpiresAt = &past
		tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)

		_, err := svc.Submit(context.Background(), userID, tk.ID, nil, "")

		require.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate claim surfaces the conflict", func(t *testing.T) {
		repo := new(MockRepository)
		tasks := new(MockTaskReader)
		assessor := new(MockAssessor)
		svc := newTestService(repo, tasks, assessor, nil)

		tk := activeTask(100)
		tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)
		assessor.On("Assess", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(lowRiskAssessment(), nil)
		repo.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(common.NewConflictError("task already completed"))

		_, err := svc.Submit(context.Background(), userID, tk.ID, nil, "")

		require.Error(t, err)
		appErr, ok := common.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, common.ErrorTypeConflict, appErr.Type)
	})

	t.Run("one-off task dedupe key ignores the date", func(t *testing.T) {
		repo := new(MockRepository)
		tasks := new(MockTaskReader)
		assessor := new(MockAssessor)
		svc := newTestService(repo, tasks, assessor, nil)

		tk := activeTask(100)
		tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)
		assessor.On("Assess", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(lowRiskAssessment(), nil)
		repo.On("Create", mock.Anything, mock.Anything, fmt.Sprintf("%s:%s", tk.ID, userID)).Return(nil)

		_, err := svc.Submit(context.Background(), userID, tk.ID, nil, "")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("daily task dedupe key carries the date", func(t *testing.T) {
		repo := new(MockRepository)
		tasks := new(MockTaskReader)
		assessor := new(MockAssessor)
		svc := newTestService(repo, tasks, assessor, nil)

		tk := activeTask(50)
		tk.IsDaily = true
		today := time.Now().UTC().Format("2006-01-02")
		tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)
		assessor.On("Assess", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(lowRiskAssessment(), nil)
		repo.On("Create", mock.Anything, mock.Anything, fmt.Sprintf("%s:%s:%s", tk.ID, userID, today)).Return(nil)

		_, err := svc.Submit(context.Background(), userID, tk.ID, nil, "")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

// ============================================================================
// Review Tests
// ============================================================================

func TestService_Review(t *testing.T) {
	reviewerID := uuid.New()
	completionID := uuid.New()

	pendingCompletion := func() *Completion {
		return &Completion{
			ID:     completionID,
			UserID: uuid.New(),
			TaskID: uuid.New(),
			Status: StatusPending,
		}
	}

	t.Run("approve records an audit entry", func(t *testing.T) {
		repo := new(MockRepository)
		audit := new(MockAuditRecorder)
		svc := newTestService(repo, nil, nil, audit)

		before := pendingCompletion()
		after := pendingCompletion()
		after.Status = StatusApproved
		after.PointsAwarded = 100

		repo.On("GetByID", mock.Anything, completionID).Return(before, nil)
		repo.On("Approve", mock.Anything, completionID, reviewerID).Return(after, nil)
		audit.On("RecordChange", mock.Anything, reviewerID, "completion.approve", "completion", completionID, before, after).
			Return(nil)

		got, err := svc.Review(context.Background(), completionID, reviewerID, &ReviewRequest{Action: "approve"})

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, got.Status)
		assert.Equal(t, 100, got.PointsAwarded)
		audit.AssertExpectations(t)
	})

	t.Run("reject without a reason uses the default", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil, nil, nil)

		before := pendingCompletion()
		after := pendingCompletion()
		after.Status = StatusRejected

		repo.On("GetByID", mock.Anything, completionID).Return(before, nil)
		repo.On("Reject", mock.Anything, completionID, reviewerID, DefaultRejectionReason).Return(after, nil)

		got, err := svc.Review(context.Background(), completionID, reviewerID, &ReviewRequest{Action: "reject"})

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, got.Status)
		repo.AssertExpectations(t)
	})

	t.Run("reject keeps an explicit reason", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil, nil, nil)

		before := pendingCompletion()
		after := pendingCompletion()
		after.Status = StatusRejected

		repo.On("GetByID", mock.Anything, completionID).Return(before, nil)
		repo.On("Reject", mock.Anything, completionID, reviewerID, "evidence does not match").Return(after, nil)

		_, err := svc.Review(context.Background(), completionID, reviewerID,
			&ReviewRequest{Action: "reject", Reason: "evidence does not match"})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("already processed completion surfaces the conflict", func(t *testing.T) {
		repo := new(MockRepository)
		audit := new(MockAuditRecorder)
		svc := newTestService(repo, nil, nil, audit)

		before := pendingCompletion()
		before.Status = StatusApproved

		repo.On("GetByID", mock.Anything, completionID).Return(before, nil)
		repo.On("Approve", mock.Anything, completionID, reviewerID).
			Return(nil, common.NewConflictError("completion already processed"))

		_, err := svc.Review(context.Background(), completionID, reviewerID, &ReviewRequest{Action: "approve"})

		require.Error(t, err)
		appErr, ok := common.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, common.ErrorTypeConflict, appErr.Type)
		audit.AssertNotCalled(t, "RecordChange",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown completion is a not found error", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil, nil, nil)

		repo.On("GetByID", mock.Anything, completionID).
			Return(nil, common.NewNotFoundError("completion not found"))

		_, err := svc.Review(context.Background(), completionID, reviewerID, &ReviewRequest{Action: "approve"})

		require.Error(t, err)
		appErr, ok := common.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, common.ErrorTypeNotFound, appErr.Type)
	})

	t.Run("invalid action is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, nil, nil, nil)

		repo.On("GetByID", mock.Anything, completionID).Return(pendingCompletion(), nil)

		_, err := svc.Review(context.Background(), completionID, reviewerID, &ReviewRequest{Action: "escalate"})

		require.Error(t, err)
		repo.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("audit failure does not roll back the decision", func(t *testing.T) {
		repo := new(MockRepository)
		audit := new(MockAuditRecorder)
		svc := newTestService(repo, nil, nil, audit)

		before := pendingCompletion()
		after := pendingCompletion()
		after.Status = StatusApproved

		repo.On("GetByID", mock.Anything, completionID).Return(before, nil)
		repo.On("Approve", mock.Anything, completionID, reviewerID).Return(after, nil)
		audit.On("RecordChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(fmt.Errorf("audit store unavailable"))

		got, err := svc.Review(context.Background(), completionID, reviewerID, &ReviewRequest{Action: "approve"})

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, got.Status)
	})
}

// ============================================================================
// Policy Configuration Tests
// ============================================================================

func TestNewService_PolicyOverrides(t *testing.T) {
	repo := new(MockRepository)
	tasks := new(MockTaskReader)
	assessor := new(MockAssessor)

	cfg := &config.PolicyConfig{
		AutoApproveDelayLowMinutes:    15,
		AutoApproveDelayMediumMinutes: 120,
	}
	svc := NewService(repo, tasks, assessor, nil, nil, cfg)

	tk := activeTask(10)
	tasks.On("GetByID", mock.Anything, tk.ID).Return(tk, nil)
	assessor.On("Assess", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(lowRiskAssessment(), nil)
	repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	c, err := svc.Submit(context.Background(), uuid.New(), tk.ID, nil, "")

	require.NoError(t, err)
	require.NotNil(t, c.AutoApproveAt)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), *c.AutoApproveAt, 5*time.Second)
}
