package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"videoshare/video-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	s, err := NewGorm(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestRatingLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRating(ctx, "v1", "u1", model.RatingLike))

	sum, err := s.RatingSummary(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{Likes: 1, Dislikes: 0}, sum)

	require.NoError(t, s.UpsertRating(ctx, "v1", "u1", model.RatingDislike))

	sum, err = s.RatingSummary(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{Likes: 0, Dislikes: 1}, sum)

	require.NoError(t, s.UpsertRating(ctx, "v1", "u1", model.RatingClear))

	sum, err = s.RatingSummary(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{Likes: 0, Dislikes: 0}, sum)

	var count int64
	require.NoError(t, s.db.Model(&model.Rating{}).Where("video_id = ?", "v1").Count(&count).Error)
	assert.Zero(t, count)
}

func TestRatingClearWithoutPriorRating(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRating(ctx, "v1", "u1", model.RatingClear))

	sum, err := s.RatingSummary(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{}, sum)
}

func TestRatingSummaryCountsPerVideo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRating(ctx, "v1", "u1", model.RatingLike))
	require.NoError(t, s.UpsertRating(ctx, "v1", "u2", model.RatingLike))
	require.NoError(t, s.UpsertRating(ctx, "v1", "u3", model.RatingDislike))
	require.NoError(t, s.UpsertRating(ctx, "v2", "u1", model.RatingDislike))

	sum, err := s.RatingSummary(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{Likes: 2, Dislikes: 1}, sum)

	assert.ErrorIs(t, s.UpsertRating(ctx, "v1", "u1", 2), ErrInvalidRating)
}

func TestCommentsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t1 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AddComment(ctx, &model.Comment{VideoID: "v1", AuthorID: "u1", Text: "first", CreatedAt: t1}))
	require.NoError(t, s.AddComment(ctx, &model.Comment{VideoID: "v1", AuthorID: "u2", Text: "second", CreatedAt: t1.Add(time.Second), AuthorName: strPtr("Bo")}))
	require.NoError(t, s.AddComment(ctx, &model.Comment{VideoID: "v2", AuthorID: "u1", Text: "elsewhere", CreatedAt: t1.Add(time.Hour)}))

	comments, err := s.Comments(ctx, "v1", 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, "first", comments[1].Text)
	assert.NotEmpty(t, comments[0].ID)
	require.NotNil(t, comments[0].AuthorName)
	assert.Equal(t, "Bo", *comments[0].AuthorName)

	comments, err = s.Comments(ctx, "v1", 1)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "second", comments[0].Text)
}

func TestVideos(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	videos := []*model.Video{
		{Title: "Cat video", CreatorID: "c1", URL: "u1", CreatedAt: base},
		{Title: "Dog video", CreatorID: "c2", URL: "u2", CreatedAt: base.Add(time.Minute)},
		{Title: "Another CAT", CreatorID: "c1", URL: "u3", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, v := range videos {
		require.NoError(t, s.CreateVideo(ctx, v))
		require.NotEmpty(t, v.ID)
	}

	t.Run("latest", func(t *testing.T) {
		got, err := s.Videos(ctx, model.VideoFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, videos[2].ID, got[0].ID)
		assert.Equal(t, videos[0].ID, got[2].ID)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		got, err := s.Videos(ctx, model.VideoFilter{Search: "cat"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Another CAT", got[0].Title)
	})

	t.Run("creator", func(t *testing.T) {
		got, err := s.Videos(ctx, model.VideoFilter{CreatorID: "c2"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Dog video", got[0].Title)
	})

	t.Run("pagination", func(t *testing.T) {
		got, err := s.Videos(ctx, model.VideoFilter{Skip: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, videos[1].ID, got[0].ID)
	})

	t.Run("popular", func(t *testing.T) {
		require.NoError(t, s.UpsertRating(ctx, videos[0].ID, "a", model.RatingLike))
		require.NoError(t, s.UpsertRating(ctx, videos[0].ID, "b", model.RatingLike))
		require.NoError(t, s.UpsertRating(ctx, videos[1].ID, "a", model.RatingLike))
		require.NoError(t, s.UpsertRating(ctx, videos[2].ID, "a", model.RatingDislike))

		got, err := s.Videos(ctx, model.VideoFilter{Sort: model.SortPopular})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, videos[0].ID, got[0].ID)
		assert.Equal(t, videos[1].ID, got[1].ID)
		assert.Equal(t, videos[2].ID, got[2].ID)
	})
}

func TestVideoByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v := &model.Video{Title: "t", CreatorID: "c", URL: "https://cdn/x.mp4"}
	require.NoError(t, s.CreateVideo(ctx, v))

	got, err := s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.URL, got.URL)

	_, err = s.VideoByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromoteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PromoteToCreator(ctx, "u1", "u1@example.com"))
	require.NoError(t, s.PromoteToCreator(ctx, "u1", ""))

	users, err := s.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleCreator, users[0].Role)
	assert.Equal(t, "u1@example.com", users[0].Email)
}

func TestUpsertProfileKeepsRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertProfile(ctx, &model.User{UID: "u1", Email: "old@example.com"}))

	users, err := s.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleConsumer, users[0].Role)

	require.NoError(t, s.PromoteToCreator(ctx, "u1", ""))
	require.NoError(t, s.UpsertProfile(ctx, &model.User{UID: "u1", Email: "new@example.com", Name: strPtr("Ann")}))

	users, err = s.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleCreator, users[0].Role)
	assert.Equal(t, "new@example.com", users[0].Email)
	require.NotNil(t, users[0].Name)
	assert.Equal(t, "Ann", *users[0].Name)

	require.NoError(t, s.UpsertProfile(ctx, &model.User{UID: "u1", Email: "new@example.com", Role: model.RoleConsumer}))

	users, err = s.Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.RoleConsumer, users[0].Role)
	require.NotNil(t, users[0].Name)
}

func TestVideoSearchIsLiteral(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"100% real", "plain title", "snake_case", `back\slash`} {
		require.NoError(t, s.CreateVideo(ctx, &model.Video{Title: title, CreatorID: "c", URL: "u"}))
	}

	cases := map[string]string{
		"%":   "100% real",
		"_":   "snake_case",
		`\`:   `back\slash`,
		"0% ": "100% real",
	}
	for search, want := range cases {
		got, err := s.Videos(ctx, model.VideoFilter{Search: search})
		require.NoError(t, err)
		require.Len(t, got, 1, "search %q", search)
		assert.Equal(t, want, got[0].Title)
	}
}
