package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
)

// MockRepository is a mock implementation of RepositoryInterface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, task *Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, taskID uuid.UUID) (*Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, task *Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockRepository) ListActive(ctx context.Context, limit, offset int) ([]*Task, int64, error) {
	args := m.Called(ctx, limit, offset)
	tasks, _ := args.Get(0).([]*Task)
	return tasks, args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) ListAll(ctx context.Context, limit, offset int) ([]*Task, int64, error) {
	args := m.Called(ctx, limit, offset)
	tasks, _ := args.Get(0).([]*Task)
	return tasks, args.Get(1).(int64), args.Error(2)
}

func TestService_CreateTask(t *testing.T) {
	t.Run("open-ended task has no expiry", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		created, err := svc.CreateTask(context.Background(), &CreateTaskRequest{
			Title:  "Join the Discord",
			Points: 50,
		})

		require.NoError(t, err)
		assert.Nil(t, created.ExpiresAt)
		assert.True(t, created.IsActive)
		assert.False(t, created.IsDaily)
	})

	t.Run("duration derives the expiry", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		hours := 48
		created, err := svc.CreateTask(context.Background(), &CreateTaskRequest{
			Title:         "Retweet the launch post",
			Points:        100,
			DurationHours: &hours,
		})

		require.NoError(t, err)
		require.NotNil(t, created.ExpiresAt)
		assert.WithinDuration(t, time.Now().UTC().Add(48*time.Hour), *created.ExpiresAt, 5*time.Second)
	})

	t.Run("daily flag carries through", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(tk *Task) bool {
			return tk.IsDaily
		})).Return(nil)

		_, err := svc.CreateTask(context.Background(), &CreateTaskRequest{
			Title:   "Daily check-in",
			Points:  10,
			IsDaily: true,
		})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_UpdateTask(t *testing.T) {
	taskID := uuid.New()

	existing := func() *Task {
		return &Task{
			ID:       taskID,
			Title:    "Follow on X",
			Points:   100,
			IsActive: true,
		}
	}

	t.Run("applies partial updates", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", mock.Anything, taskID).Return(existing(), nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		points := 150
		inactive := false
		updated, err := svc.UpdateTask(context.Background(), taskID, &UpdateTaskRequest{
			Points:   &points,
			IsActive: &inactive,
		})

		require.NoError(t, err)
		assert.Equal(t, 150, updated.Points)
		assert.False(t, updated.IsActive)
		assert.Equal(t, "Follow on X", updated.Title)
	})

	t.Run("rejects non-positive points", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", mock.Anything, taskID).Return(existing(), nil)

		points := 0
		_, err := svc.UpdateTask(context.Background(), taskID, &UpdateTaskRequest{Points: &points})

		require.Error(t, err)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown task propagates not found", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", mock.Anything, taskID).
			Return(nil, common.NewNotFoundError("task not found"))

		_, err := svc.UpdateTask(context.Background(), taskID, &UpdateTaskRequest{})

		require.Error(t, err)
	})
}

func TestTask_IsCompletable(t *testing.T) {
	now := time.Now().UTC()

	t.Run("active task with no expiry", func(t *testing.T) {
		tk := &Task{IsActive: true}
		assert.True(t, tk.IsCompletable(now))
	})

	t.Run("inactive task", func(t *testing.T) {
		tk := &Task{IsActive: false}
		assert.False(t, tk.IsCompletable(now))
	})

	t.Run("expired task", func(t *testing.T) {
		past := now.Add(-time.Minute)
		tk := &Task{IsActive: true, ExpiresAt: &past}
		assert.False(t, tk.IsCompletable(now))
	})

	t.Run("task expiring later", func(t *testing.T) {
		future := now.Add(time.Minute)
		tk := &Task{IsActive: true, ExpiresAt: &future}
		assert.True(t, tk.IsCompletable(now))
	})
}
