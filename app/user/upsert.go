// Package user contains the profile handlers
package user

import (
	"net/http"

	"videoshare/video-api/internal"
	"videoshare/video-api/internal/model"
	"videoshare/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserUpsert creates a profile on signup or updates an existing one. The
// role is only changed when the body carries one.
func UserUpsert(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var body validators.ProfileInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.ProfileValidator(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	u := &model.User{
		UID:   body.UID,
		Email: body.Email,
		Name:  body.Name,
		DOB:   body.DOB,
		Role:  body.Role,
	}

	if err := d.DB.UpsertProfile(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Could not save profile",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upsert profile", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"uid":     u.UID,
	})
}
