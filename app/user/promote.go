package user

import (
	"errors"
	"net/http"

	"videoshare/video-api/internal"
	"videoshare/video-api/internal/auth"
	"videoshare/video-api/internal/model"
	"videoshare/video-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserPromote grants the caller the creator role. Promoting a creator again
// is a no-op that still succeeds.
func UserPromote(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	claims := middleware.Claims(c)
	ctx := c.Request.Context()

	err := d.Identity.SetRole(ctx, claims.Subject, model.RoleCreator)
	if err != nil {
		if !errors.Is(err, auth.ErrRolesReadOnly) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Could not promote user",
				"requestID": requestID,
			})

			zap.L().Error("Failed to set role claim", zap.String("requestID", requestID), zap.Error(err))
			return
		}

		zap.L().Warn("Identity provider roles are read only, only the profile is updated",
			zap.String("requestID", requestID),
			zap.String("userID", claims.Subject))
	}

	if err := d.DB.PromoteToCreator(ctx, claims.Subject, claims.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Could not promote user",
			"requestID": requestID,
		})

		zap.L().Error("Failed to promote profile", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	res := gin.H{
		"success": true,
		"message": "Promoted to creator. Please refresh your auth token.",
	}

	// Providers that mint their own tokens can hand out the refreshed one
	if issuer, ok := d.Identity.(auth.TokenIssuer); ok {
		token, err := issuer.Issue(claims.Subject, claims.Email, model.RoleCreator)
		if err != nil {
			zap.L().Warn("Failed to issue refreshed token", zap.String("requestID", requestID), zap.Error(err))
		} else {
			res["token"] = token
		}
	}

	c.JSON(http.StatusOK, res)
}
