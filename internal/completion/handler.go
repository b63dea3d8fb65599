package completion

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/middleware"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/pagination"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/validation"
)

// Handler handles HTTP requests for completions
type Handler struct {
	service *Service
}

// NewHandler creates a new completion handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitCompletion records a task completion claim for the authenticated user
// POST /api/v1/tasks/:id/complete
func (h *Handler) SubmitCompletion(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid task id")
		return
	}

	var req SubmitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validation.ValidateStruct(&req); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	created, err := h.service.Submit(c.Request.Context(), userID, taskID, &req, c.ClientIP())
	if err != nil {
		if appErr, ok := common.AsAppError(err); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to submit completion")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": created})
}

// ListMyCompletions returns the authenticated user's completion history
// GET /api/v1/users/me/completions?limit=20&offset=0
func (h *Handler) ListMyCompletions(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)

	completions, total, err := h.service.ListUserCompletions(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list completions")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"completions": completions}, meta)
}

// ReviewCompletion applies an admin decision to a pending completion
// POST /api/v1/admin/verifications/:id
func (h *Handler) ReviewCompletion(c *gin.Context) {
	reviewerID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	completionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid completion id")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Review(c.Request.Context(), completionID, reviewerID, &req)
	if err != nil {
		if appErr, ok := common.AsAppError(err); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to review completion")
		return
	}

	common.SuccessResponse(c, updated)
}

// ListPendingCompletions returns the admin review queue
// GET /api/v1/admin/verifications?limit=20&offset=0
func (h *Handler) ListPendingCompletions(c *gin.Context) {
	params := pagination.ParseParams(c)

	completions, total, err := h.service.ListPending(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list pending completions")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"completions": completions}, meta)
}
