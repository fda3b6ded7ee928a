package video

import (
	"net/http"

	"videoshare/video-api/internal"
	"videoshare/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func VideoList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	filter, err := validators.VideoFilterValidator(
		c.Query("search"),
		c.Query("sort"),
		c.Query("creator"),
		c.Query("limit"),
		c.Query("skip"),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	videos, err := d.DB.Videos(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Could not fetch videos",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list videos", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, videos)
}
