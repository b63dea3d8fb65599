package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/pagination"
)

// Handler handles HTTP requests for the audit trail
type Handler struct {
	service *Service
}

// NewHandler creates a new audit handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListAuditLog returns recent audit entries (admin)
// GET /api/v1/admin/audit?limit=20&offset=0
func (h *Handler) ListAuditLog(c *gin.Context) {
	params := pagination.ParseParams(c)

	entries, total, err := h.service.ListRecent(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list audit log")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"entries": entries}, meta)
}

// ListEntityAuditLog returns the audit trail for a single entity (admin)
// GET /api/v1/admin/audit/:entityType/:id
func (h *Handler) ListEntityAuditLog(c *gin.Context) {
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid entity id")
		return
	}

	params := pagination.ParseParams(c)

	entries, total, err := h.service.ListForEntity(c.Request.Context(), c.Param("entity_type"), entityID, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list audit log")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"entries": entries}, meta)
}
