package user

import (
	"net/http"

	"videoshare/video-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	users, err := d.DB.Profiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Could not fetch users",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list profiles", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, users)
}
