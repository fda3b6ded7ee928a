package service

import (
	"errors"
	"net/http"

	"videoshare/video-api/db"
	"videoshare/video-api/internal/auth"
)

var (
	ErrNoFile    = errors.New("no video file provided")
	ErrForbidden = auth.ErrForbidden
	ErrTranscode = errors.New("failed to transcode video")
	ErrStore     = errors.New("failed to upload video to storage")
	ErrMetadata  = errors.New("failed to save video metadata")
)

// StatusCode maps an error returned by the pipeline, the identity provider
// or the metadata store to the HTTP status it should be reported with
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNoFile), errors.Is(err, db.ErrInvalidRating):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that's safe to show the client
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoFile):
		return "No video file uploaded"
	case errors.Is(err, db.ErrInvalidRating):
		return "Invalid rating"
	case errors.Is(err, auth.ErrUnauthenticated):
		return "Unauthorized"
	case errors.Is(err, ErrForbidden):
		return "Only creators can upload videos"
	case errors.Is(err, db.ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrTranscode):
		return "Video conversion failed"
	case errors.Is(err, ErrStore):
		return "Failed to store video"
	case errors.Is(err, ErrMetadata):
		return "Failed to save video"
	default:
		return "Internal server error"
	}
}
