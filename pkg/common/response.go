package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Meta carries pagination metadata for list responses
type Meta struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// SuccessResponse sends a successful JSON response
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// SuccessResponseWithMeta sends a successful JSON response with pagination metadata
func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta Meta) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"meta":    meta,
	})
}

// ErrorResponse sends an error JSON response with the given status code
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// AppErrorResponse sends an error JSON response derived from an AppError
func AppErrorResponse(c *gin.Context, err *AppError) {
	c.JSON(err.StatusCode(), gin.H{
		"success": false,
		"error":   err.Message,
		"type":    err.Type,
	})
}
