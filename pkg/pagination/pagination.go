package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
)

const (
	// DefaultLimit is the page size used when none is requested
	DefaultLimit = 20
	// MaxLimit caps the requested page size
	MaxLimit = 100
	// DefaultOffset is the starting offset
	DefaultOffset = 0
)

// Params holds parsed pagination parameters
type Params struct {
	Limit  int
	Offset int
}

// ParseParams extracts limit/offset query parameters with sane bounds
func ParseParams(c *gin.Context) Params {
	params := Params{Limit: DefaultLimit, Offset: DefaultOffset}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			if limit > MaxLimit {
				limit = MaxLimit
			}
			params.Limit = limit
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	return params
}

// BuildMeta builds pagination metadata for a list response
func BuildMeta(limit, offset int, total int64) common.Meta {
	return common.Meta{Limit: limit, Offset: offset, Total: total}
}
