// Package db contains the metadata store used for videos, comments, ratings
// and user profiles
package db

import (
	"context"
	"errors"
	"fmt"
	"os"

	"videoshare/video-api/internal/model"
	"videoshare/video-api/pkg/util"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRating = errors.New("rating value must be -1, 0 or 1")
)

const (
	defaultCommentLimit = 100
	defaultVideoLimit   = 20
)

// Store is the metadata store. Implementations rely on the backing database
// for per-operation atomicity (single document upserts, single aggregate
// queries) and hold no cross-request state of their own.
type Store interface {
	CreateVideo(ctx context.Context, v *model.Video) error
	Videos(ctx context.Context, f model.VideoFilter) ([]model.Video, error)
	VideoByID(ctx context.Context, id string) (*model.Video, error)

	AddComment(ctx context.Context, c *model.Comment) error
	// Comments returns at most limit comments, newest first
	Comments(ctx context.Context, videoID string, limit int) ([]model.Comment, error)

	// UpsertRating writes +1/-1 for (videoID, uid). 0 deletes the rating.
	UpsertRating(ctx context.Context, videoID, uid string, value int) error
	RatingSummary(ctx context.Context, videoID string) (model.RatingSummary, error)

	UpsertProfile(ctx context.Context, u *model.User) error
	PromoteToCreator(ctx context.Context, uid, email string) error
	Profiles(ctx context.Context) ([]model.User, error)

	Close() error
}

// New opens the store selected by database.driver
func New() (Store, error) {
	dsn := viper.GetString("database.dsn")

	switch viper.GetString("database.driver") {
	case "sqlite":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() {
			if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to %s", dsn)
			}
		}

		s, err := NewGorm(sqlite.Open(dsn))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite database, %w", err)
		}

		return s, nil
	case "postgres":
		s, err := NewGorm(postgres.Open(dsn))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres database, %w", err)
		}

		return s, nil
	case "mongo":
		return NewMongo(dsn, viper.GetString("database.name")), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", viper.GetString("database.driver"))
	}
}

func normalizeVideoFilter(f model.VideoFilter) model.VideoFilter {
	if f.Limit <= 0 {
		f.Limit = defaultVideoLimit
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Sort == "" {
		f.Sort = model.SortLatest
	}

	return f
}

func validRating(v int) bool {
	return v == model.RatingLike || v == model.RatingDislike || v == model.RatingClear
}
