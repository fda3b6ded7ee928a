package rating

import (
	"net/http"

	"videoshare/video-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Summary(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	summary, err := d.DB.RatingSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Could not load rating",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load rating summary", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, summary)
}
