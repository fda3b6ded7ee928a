// Package video contains the handlers for publishing and browsing videos
package video

import (
	"errors"
	"net/http"

	"videoshare/video-api/internal"
	"videoshare/video-api/internal/service"
	"videoshare/video-api/pkg/middleware"
	"videoshare/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func VideoUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	req := &service.UploadRequest{
		Claims:    middleware.Claims(c),
		RequestID: requestID,
	}

	fh, err := c.FormFile("video")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "Request body size exceeds limit",
				"requestID": requestID,
			})
			return
		}

		if !errors.Is(err, http.ErrMissingFile) {
			zap.L().Debug("Failed to read multipart file", zap.String("requestID", requestID), zap.Error(err))
		}
	} else {
		code, f, err := validators.FileValidator(fh, viper.GetInt64("upload.max_size"))
		if err != nil {
			if code == http.StatusInternalServerError {
				c.JSON(code, gin.H{
					"error":     "Internal server error",
					"requestID": requestID,
				})

				zap.L().Error("Failed to validate uploaded file", zap.String("requestID", requestID), zap.Error(err))
				return
			}

			c.JSON(code, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		req.File, err = service.WriteScratch(viper.GetString("upload.scratch_dir"), fh.Filename, f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to write scratch file", zap.String("requestID", requestID), zap.Error(err))
			return
		}

		req.Title = c.PostForm("title")
		req.UploaderName = c.PostForm("uploaderName")
		req.Genre = c.PostForm("genre")
	}

	res, err := d.Pipeline.Run(c.Request.Context(), req)
	if err != nil {
		code := service.StatusCode(err)

		c.JSON(code, gin.H{
			"error":     service.PublicMessage(err),
			"requestID": requestID,
		})

		if code == http.StatusInternalServerError {
			zap.L().Error("Video upload failed", zap.String("requestID", requestID), zap.Error(err))
		}
		return
	}

	zap.L().Info("Video uploaded",
		zap.String("requestID", requestID),
		zap.String("videoID", res.VideoID),
		zap.String("url", res.URL))

	c.JSON(http.StatusOK, res)
}
