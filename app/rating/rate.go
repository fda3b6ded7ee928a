// Package rating contains the like/dislike handlers
package rating

import (
	"net/http"

	"videoshare/video-api/internal"
	"videoshare/video-api/internal/model"
	"videoshare/video-api/pkg/middleware"
	"videoshare/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type rateBody struct {
	Value any `json:"value"`
}

// Rate handles POST /api/videos/:id/rate with a {value} body
func Rate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var body rateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid rating",
			"requestID": requestID,
		})
		return
	}

	value, err := validators.RatingValidator(body.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid rating",
			"requestID": requestID,
		})
		return
	}

	rate(c, d, value)
}

func Like(c *gin.Context, d *internal.Deps) {
	rate(c, d, model.RatingLike)
}

func Dislike(c *gin.Context, d *internal.Deps) {
	rate(c, d, model.RatingDislike)
}

func rate(c *gin.Context, d *internal.Deps, value int) {
	requestID := c.MustGet("requestID").(string)
	claims := middleware.Claims(c)
	videoID := c.Param("id")

	err := d.DB.UpsertRating(c.Request.Context(), videoID, claims.Subject, value)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Rating failed",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upsert rating", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	summary, err := d.DB.RatingSummary(c.Request.Context(), videoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Rating failed",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load rating summary", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
	})
}
