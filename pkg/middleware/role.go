package middleware

import (
	"errors"
	"net/http"

	"videoshare/video-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// NewRoleMiddleware rejects requests whose claims don't carry role. Must be
// mounted after the auth middleware.
func NewRoleMiddleware(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := auth.RequireRole(Claims(c), role)
		if err == nil {
			c.Next()
			return
		}

		if errors.Is(err, auth.ErrUnauthenticated) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Unauthorized",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "Only " + role + "s can do this",
			"requestID": c.GetString("requestID"),
		})
	}
}
