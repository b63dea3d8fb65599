package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
)

const (
	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// Claims represents the JWT claims carried by access tokens
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token and stores the user identity on the context
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			common.AppErrorResponse(c, common.NewAuthenticationError("authentication required"))
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			common.AppErrorResponse(c, common.NewAuthenticationError("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole restricts a route to users with the given role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, exists := c.Get(userRoleKey)
		if !exists || current.(string) != role {
			common.AppErrorResponse(c, common.NewAuthorizationError("insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CronAuth gates sweeper trigger endpoints with a shared bearer secret
func CronAuth(cronSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cronSecret == "" {
			common.ErrorResponse(c, http.StatusServiceUnavailable, "cron endpoints disabled")
			c.Abort()
			return
		}
		token := extractBearerToken(c)
		if subtle.ConstantTimeCompare([]byte(token), []byte(cronSecret)) != 1 {
			common.AppErrorResponse(c, common.NewAuthenticationError("invalid cron secret"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID extracts the authenticated user's ID from gin context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, common.NewAuthenticationError("authentication required")
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil, common.NewAuthenticationError("invalid user identity")
	}
	return id, nil
}

// GetUserRole extracts the authenticated user's role from gin context
func GetUserRole(c *gin.Context) string {
	if role, exists := c.Get(userRoleKey); exists {
		if s, ok := role.(string); ok {
			return s
		}
	}
	return ""
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
