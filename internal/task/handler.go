package task

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/pagination"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/validation"
)

// Handler handles HTTP requests for tasks
type Handler struct {
	service *Service
}

// NewHandler creates a new task handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListActiveTasks returns tasks open for completion
// GET /api/v1/tasks?limit=20&offset=0
func (h *Handler) ListActiveTasks(c *gin.Context) {
	params := pagination.ParseParams(c)

	tasks, total, err := h.service.ListActiveTasks(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"tasks": tasks}, meta)
}

// GetTask returns a single task
// GET /api/v1/tasks/:id
func (h *Handler) GetTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), taskID)
	if err != nil {
		if appErr, ok := common.AsAppError(err); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get task")
		return
	}

	common.SuccessResponse(c, task)
}

// CreateTask creates a task (admin)
// POST /api/v1/admin/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), &req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create task")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": task})
}

// UpdateTask updates a task (admin)
// PUT /api/v1/admin/tasks/:id
func (h *Handler) UpdateTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid task id")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(), taskID, &req)
	if err != nil {
		if appErr, ok := common.AsAppError(err); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update task")
		return
	}

	common.SuccessResponse(c, task)
}

// ListAllTasks returns every task (admin)
// GET /api/v1/admin/tasks
func (h *Handler) ListAllTasks(c *gin.Context) {
	params := pagination.ParseParams(c)

	tasks, total, err := h.service.ListAllTasks(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"tasks": tasks}, meta)
}
