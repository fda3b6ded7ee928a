package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"videoshare/video-api/internal/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GormStore keeps metadata in SQLite or Postgres
type GormStore struct {
	db *gorm.DB
}

func NewGorm(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(model.Video{}, model.Comment{}, model.Rating{}, model.User{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return &GormStore{db: db}, nil
}

func newID() (string, error) {
	return gonanoid.Generate(idCharset, 20)
}

func (s *GormStore) CreateVideo(ctx context.Context, v *model.Video) error {
	if v.ID == "" {
		id, err := newID()
		if err != nil {
			return fmt.Errorf("failed to generate video ID, %w", err)
		}
		v.ID = id
	}

	return s.db.WithContext(ctx).Create(v).Error
}

func (s *GormStore) Videos(ctx context.Context, f model.VideoFilter) ([]model.Video, error) {
	f = normalizeVideoFilter(f)

	q := s.db.WithContext(ctx).Model(&model.Video{})

	if f.Search != "" {
		q = q.Where(`LOWER(videos.title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Search))+"%")
	}

	if f.CreatorID != "" {
		q = q.Where("videos.creator_id = ?", f.CreatorID)
	}

	switch f.Sort {
	case model.SortPopular:
		q = q.
			Select("videos.*").
			Joins("LEFT JOIN (SELECT video_id, SUM(CASE WHEN value = 1 THEN 1 ELSE 0 END) AS likes FROM ratings GROUP BY video_id) r ON r.video_id = videos.id").
			Order("COALESCE(r.likes, 0) DESC").
			Order("videos.created_at DESC")
	default:
		q = q.Order("videos.created_at DESC")
	}

	videos := []model.Video{}
	err := q.
		Offset(f.Skip).
		Limit(f.Limit).
		Find(&videos).
		Error
	if err != nil {
		return nil, err
	}

	return videos, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *GormStore) VideoByID(ctx context.Context, id string) (*model.Video, error) {
	var v model.Video

	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&v).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &v, nil
}

func (s *GormStore) AddComment(ctx context.Context, c *model.Comment) error {
	if c.ID == "" {
		id, err := newID()
		if err != nil {
			return fmt.Errorf("failed to generate comment ID, %w", err)
		}
		c.ID = id
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormStore) Comments(ctx context.Context, videoID string, limit int) ([]model.Comment, error) {
	if limit <= 0 {
		limit = defaultCommentLimit
	}

	comments := []model.Comment{}
	err := s.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).
		Error
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (s *GormStore) UpsertRating(ctx context.Context, videoID, uid string, value int) error {
	if !validRating(value) {
		return ErrInvalidRating
	}

	if value == model.RatingClear {
		return s.db.WithContext(ctx).
			Where("video_id = ? AND author_id = ?", videoID, uid).
			Delete(&model.Rating{}).
			Error
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "video_id"}, {Name: "author_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model.Rating{
			VideoID:  videoID,
			AuthorID: uid,
			Value:    value,
		}).
		Error
}

func (s *GormStore) RatingSummary(ctx context.Context, videoID string) (model.RatingSummary, error) {
	var summary model.RatingSummary

	err := s.db.WithContext(ctx).
		Model(&model.Rating{}).
		Select("COALESCE(SUM(CASE WHEN value = 1 THEN 1 ELSE 0 END), 0) AS likes, COALESCE(SUM(CASE WHEN value = -1 THEN 1 ELSE 0 END), 0) AS dislikes").
		Where("video_id = ?", videoID).
		Scan(&summary).
		Error

	return summary, err
}

func (s *GormStore) UpsertProfile(ctx context.Context, u *model.User) error {
	cols := []string{"email", "updated_at"}
	if u.Name != nil {
		cols = append(cols, "name")
	}
	if u.DOB != nil {
		cols = append(cols, "dob")
	}

	// An existing role is only overwritten when one is given explicitly
	if u.Role != "" {
		cols = append(cols, "role")
	} else {
		u.Role = model.RoleConsumer
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).
		Create(u).
		Error
}

func (s *GormStore) PromoteToCreator(ctx context.Context, uid, email string) error {
	cols := []string{"role", "updated_at"}
	if email != "" {
		cols = append(cols, "email")
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).
		Create(&model.User{
			UID:   uid,
			Email: email,
			Role:  model.RoleCreator,
		}).
		Error
}

func (s *GormStore) Profiles(ctx context.Context) ([]model.User, error) {
	users := []model.User{}

	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&users).
		Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
