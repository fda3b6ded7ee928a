package video

import (
	"errors"
	"net/http"

	"videoshare/video-api/db"
	"videoshare/video-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func VideoFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	v, err := d.DB.VideoByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Video not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch video", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, v)
}
