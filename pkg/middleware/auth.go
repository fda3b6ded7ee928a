package middleware

import (
	"net/http"
	"strings"

	"videoshare/video-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// NewAuthMiddleware verifies the bearer token in the Authorization header
// and stores the resulting claims on the context. Requests are rejected
// before any handler runs, so nothing gets allocated for them.
func NewAuthMiddleware(p auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Missing or malformed authorization header",
				"requestID": requestID,
			})
			return
		}

		claims, err := p.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid",
				"requestID": requestID,
			})

			zap.L().Debug("Failed to verify token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set(claimsKey, claims)
		c.Set("userID", claims.Subject)
		c.Next()
	}
}

// Claims returns the verified claims set by the auth middleware
func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}

	claims, _ := v.(*auth.Claims)
	return claims
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
