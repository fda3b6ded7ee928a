package comment

import (
	"net/http"
	"strings"

	"videoshare/video-api/internal"
	"videoshare/video-api/internal/model"
	"videoshare/video-api/pkg/middleware"
	"videoshare/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createBody struct {
	Text       string `json:"text"`
	AuthorName string `json:"authorName"`
}

func CommentCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	claims := middleware.Claims(c)

	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	text, err := validators.CommentValidator(body.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	comment := &model.Comment{
		VideoID:  c.Param("id"),
		AuthorID: claims.Subject,
		Text:     text,
	}

	name := strings.TrimSpace(body.AuthorName)
	if name == "" {
		name = claims.Name
	}
	if name != "" {
		comment.AuthorName = &name
	}

	if err := d.DB.AddComment(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Could not add comment",
			"requestID": requestID,
		})

		zap.L().Error("Failed to add comment", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      comment.ID,
		"comment": comment,
	})
}
