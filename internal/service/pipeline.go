package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"videoshare/video-api/internal/auth"
	"videoshare/video-api/internal/model"
	"videoshare/video-api/internal/storage"
	"videoshare/video-api/pkg/metrics"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const objectNameCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// VideoWriter is the part of the metadata store the pipeline writes to
type VideoWriter interface {
	CreateVideo(ctx context.Context, v *model.Video) error
}

type UploadRequest struct {
	File         *ScratchFile
	Claims       *auth.Claims
	Title        string
	UploaderName string
	Genre        string
	RequestID    string
}

type UploadResult struct {
	VideoID string `json:"videoId"`
	URL     string `json:"url"`
}

// Pipeline takes an uploaded file through transcoding, publishing to the
// object store and persisting its metadata
type Pipeline struct {
	transcoder Transcoder
	storage    storage.Store
	videos     VideoWriter
	now        func() time.Time
}

func NewPipeline(t Transcoder, s storage.Store, w VideoWriter) *Pipeline {
	return &Pipeline{
		transcoder: t,
		storage:    s,
		videos:     w,
		now:        time.Now,
	}
}

// Run executes the pipeline for a single upload. The scratch file in req
// is owned by Run and is gone once it returns, as is the transcoded
// artifact.
func (p *Pipeline) Run(ctx context.Context, req *UploadRequest) (res *UploadResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpload(outcome(err), time.Since(start).Seconds())
	}()

	if req == nil || req.File == nil || req.File.Path == "" {
		return nil, ErrNoFile
	}
	defer removeScratch(req.File.Path)

	if err := auth.RequireCreator(req.Claims); err != nil {
		return nil, err
	}

	logger := zap.L().With(
		zap.String("requestID", req.RequestID),
		zap.String("userID", req.Claims.Subject),
	)

	converted, err := p.transcoder.Convert(ctx, req.File.Path)
	if err != nil {
		if !errors.Is(err, ErrTranscode) {
			err = fmt.Errorf("%w: %w", ErrTranscode, err)
		}
		return nil, err
	}
	defer removeScratch(converted)

	removeScratch(req.File.Path)
	logger.Debug("Video transcoded", zap.String("path", converted))

	name, err := ObjectName(req.Claims.Subject, p.now())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate object name, %w", ErrStore, err)
	}

	url, err := p.storage.Upload(ctx, converted, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	removeScratch(converted)
	logger.Debug("Video published", zap.String("object", name), zap.String("url", url))

	v := &model.Video{
		Title:        orDefault(req.Title, model.DefaultTitle),
		UploaderName: orDefault(req.UploaderName, model.DefaultUploaderName),
		Genre:        orDefault(req.Genre, model.DefaultGenre),
		CreatorID:    req.Claims.Subject,
		URL:          url,
		CreatedAt:    p.now().UTC(),
	}

	if err := p.videos.CreateVideo(ctx, v); err != nil {
		// Don't leave an object nobody can find
		if derr := p.storage.Delete(context.WithoutCancel(ctx), name); derr != nil {
			logger.Warn("Failed to delete orphaned object", zap.String("object", name), zap.Error(derr))
		}

		return nil, fmt.Errorf("%w: %w", ErrMetadata, err)
	}

	return &UploadResult{
		VideoID: v.ID,
		URL:     url,
	}, nil
}

// ObjectName builds a storage key for a video uploaded by uid. Names
// combine the uploader, a nanosecond timestamp and a random suffix so
// concurrent uploads never collide.
func ObjectName(uid string, t time.Time) (string, error) {
	suffix, err := gonanoid.Generate(objectNameCharset, 8)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s_%d_%s.mp4", sanitizeKey(uid), t.UnixNano(), suffix), nil
}

func sanitizeKey(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)

	if s == "" {
		return "anonymous"
	}

	return s
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}

	return s
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoFile):
		return "bad_request"
	case errors.Is(err, auth.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrTranscode):
		return "transcode_error"
	case errors.Is(err, ErrStore):
		return "store_error"
	case errors.Is(err, ErrMetadata):
		return "metadata_error"
	default:
		return "error"
	}
}
