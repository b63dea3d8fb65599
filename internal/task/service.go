package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
)

// Service implements task business logic
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new task service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// CreateTask creates a task; expires_at is derived from duration_hours
func (s *Service) CreateTask(ctx context.Context, req *CreateTaskRequest) (*Task, error) {
	now := time.Now().UTC()

	task := &Task{
		ID:            uuid.New(),
		Title:         req.Title,
		Description:   req.Description,
		Points:        req.Points,
		DurationHours: req.DurationHours,
		IsActive:      true,
		IsDaily:       req.IsDaily,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if req.DurationHours != nil {
		expiresAt := now.Add(time.Duration(*req.DurationHours) * time.Hour)
		task.ExpiresAt = &expiresAt
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// GetTask retrieves a task by ID
func (s *Service) GetTask(ctx context.Context, taskID uuid.UUID) (*Task, error) {
	return s.repo.GetByID(ctx, taskID)
}

// UpdateTask applies partial updates to a task
func (s *Service) UpdateTask(ctx context.Context, taskID uuid.UUID, req *UpdateTaskRequest) (*Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Points != nil {
		if *req.Points <= 0 {
			return nil, common.NewBadRequestError("points must be positive", nil)
		}
		task.Points = *req.Points
	}
	if req.IsActive != nil {
		task.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// ListActiveTasks retrieves tasks currently open for completion
func (s *Service) ListActiveTasks(ctx context.Context, limit, offset int) ([]*Task, int64, error) {
	return s.repo.ListActive(ctx, limit, offset)
}

// ListAllTasks retrieves every task, for admin screens
func (s *Service) ListAllTasks(ctx context.Context, limit, offset int) ([]*Task, int64, error) {
	return s.repo.ListAll(ctx, limit, offset)
}
