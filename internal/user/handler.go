package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/middleware"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/pagination"
)

// Handler handles HTTP requests for users
type Handler struct {
	repo RepositoryInterface
}

// NewHandler creates a new user handler
func NewHandler(repo RepositoryInterface) *Handler {
	return &Handler{repo: repo}
}

// GetMe returns the authenticated user's profile and points balance
// GET /api/v1/users/me
func (h *Handler) GetMe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if appErr, ok := common.AsAppError(err); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get user")
		return
	}

	common.SuccessResponse(c, u)
}

// GetLeaderboard returns active users ranked by points
// GET /api/v1/leaderboard?limit=20&offset=0
func (h *Handler) GetLeaderboard(c *gin.Context) {
	params := pagination.ParseParams(c)

	users, total, err := h.repo.ListTopByPoints(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get leaderboard")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"users": users}, meta)
}
