package sweeper

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
)

// Handler exposes the sweep jobs as cron-triggered HTTP endpoints.
type Handler struct {
	worker *Worker
}

// NewHandler creates a new sweeper handler
func NewHandler(worker *Worker) *Handler {
	return &Handler{worker: worker}
}

// AutoApprove runs the auto-approval sweep
// GET|POST /api/v1/cron/auto-approve
func (h *Handler) AutoApprove(c *gin.Context) {
	approved, err := h.worker.RunAutoApprove(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Auto-approval sweep failed")
		return
	}

	common.SuccessResponse(c, gin.H{
		"approved_count": approved,
	})
}

// AutoRejectPending runs the stale rejection sweep
// GET|POST /api/v1/cron/auto-reject-pending
func (h *Handler) AutoRejectPending(c *gin.Context) {
	rejected, err := h.worker.RunStaleReject(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Stale rejection sweep failed")
		return
	}
	if rejected == nil {
		rejected = []StaleRejection{}
	}

	common.SuccessResponse(c, gin.H{
		"rejected":    len(rejected),
		"completions": rejected,
	})
}

// MarkExpired runs the task expiration sweep
// POST /api/v1/tasks/mark-expired
func (h *Handler) MarkExpired(c *gin.Context) {
	result, err := h.worker.RunMarkExpired(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Expiration sweep failed")
		return
	}

	common.SuccessResponse(c, result)
}
