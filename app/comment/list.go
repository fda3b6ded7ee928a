// Package comment contains the video comment handlers
package comment

import (
	"net/http"

	"videoshare/video-api/internal"
	"videoshare/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func CommentList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	limit, err := validators.LimitValidator(c.Query("limit"), validators.DefaultCommentLimit, validators.MaxCommentLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	comments, err := d.DB.Comments(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Could not load comments",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list comments", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, comments)
}
