package db

import (
	"context"
	"testing"
	"time"

	"videoshare/video-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// mockMongoStore runs the store against the mock deployment of mt
func mockMongoStore(mt *mtest.T) *MongoStore {
	return &MongoStore{
		name: mt.DB.Name(),
		client: NewLazy(func(context.Context) (*mongo.Client, error) {
			return mt.Client, nil
		}),
	}
}

func TestMongoUpsertRating(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("like upserts", func(mt *mtest.T) {
		s := mockMongoStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, s.UpsertRating(context.Background(), "v1", "u1", model.RatingLike))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
		assert.Equal(mt, ratingsCollection, evt.Command.Lookup("update").StringValue())
		assert.True(mt, evt.Command.Lookup("updates", "0", "upsert").Boolean())
		assert.Equal(mt, "v1", evt.Command.Lookup("updates", "0", "q", "videoId").StringValue())
		assert.Equal(mt, "u1", evt.Command.Lookup("updates", "0", "q", "uid").StringValue())
		assert.EqualValues(mt, model.RatingLike, evt.Command.Lookup("updates", "0", "u", "$set", "value").AsInt64())
	})

	mt.Run("zero deletes", func(mt *mtest.T) {
		s := mockMongoStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, s.UpsertRating(context.Background(), "v1", "u1", model.RatingClear))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "delete", evt.CommandName)
		assert.Equal(mt, "v1", evt.Command.Lookup("deletes", "0", "q", "videoId").StringValue())
	})

	mt.Run("invalid value never reaches the server", func(mt *mtest.T) {
		s := mockMongoStore(mt)

		err := s.UpsertRating(context.Background(), "v1", "u1", 5)
		assert.ErrorIs(mt, err, ErrInvalidRating)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongoRatingSummary(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("aggregates counts", func(mt *mtest.T) {
		s := mockMongoStore(mt)
		ns := mt.DB.Name() + "." + ratingsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "v1"},
			{Key: "likes", Value: int32(2)},
			{Key: "dislikes", Value: int32(1)},
		}))

		sum, err := s.RatingSummary(context.Background(), "v1")
		require.NoError(mt, err)
		assert.Equal(mt, model.RatingSummary{Likes: 2, Dislikes: 1}, sum)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "aggregate", evt.CommandName)
		assert.Equal(mt, "v1", evt.Command.Lookup("pipeline", "0", "$match", "videoId").StringValue())
		assert.Equal(mt, "$videoId", evt.Command.Lookup("pipeline", "1", "$group", "_id").StringValue())
	})

	mt.Run("no ratings", func(mt *mtest.T) {
		s := mockMongoStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+ratingsCollection, mtest.FirstBatch))

		sum, err := s.RatingSummary(context.Background(), "v1")
		require.NoError(mt, err)
		assert.Equal(mt, model.RatingSummary{}, sum)
	})
}

func TestMongoComments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("newest first with limit", func(mt *mtest.T) {
		s := mockMongoStore(mt)

		newer := primitive.NewObjectID()
		older := primitive.NewObjectID()
		now := time.Now().UTC().Truncate(time.Millisecond)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+commentsCollection, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: newer},
				{Key: "videoId", Value: "v1"},
				{Key: "uid", Value: "u2"},
				{Key: "text", Value: "second"},
				{Key: "createdAt", Value: now},
			},
			bson.D{
				{Key: "_id", Value: older},
				{Key: "videoId", Value: "v1"},
				{Key: "uid", Value: "u1"},
				{Key: "authorName", Value: "Ann"},
				{Key: "text", Value: "first"},
				{Key: "createdAt", Value: now.Add(-time.Minute)},
			},
		))

		comments, err := s.Comments(context.Background(), "v1", 10)
		require.NoError(mt, err)
		require.Len(mt, comments, 2)

		assert.Equal(mt, newer.Hex(), comments[0].ID)
		assert.Equal(mt, "second", comments[0].Text)
		assert.Nil(mt, comments[0].AuthorName)
		require.NotNil(mt, comments[1].AuthorName)
		assert.Equal(mt, "Ann", *comments[1].AuthorName)
		assert.True(mt, comments[0].CreatedAt.After(comments[1].CreatedAt))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, "v1", evt.Command.Lookup("filter", "videoId").StringValue())
		assert.EqualValues(mt, -1, evt.Command.Lookup("sort", "createdAt").AsInt64())
		assert.EqualValues(mt, 10, evt.Command.Lookup("limit").AsInt64())
	})
}

func TestMongoPopularVideos(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("joins likes", func(mt *mtest.T) {
		s := mockMongoStore(mt)

		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+videosCollection, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "Cat"},
			{Key: "creatorId", Value: "c1"},
			{Key: "url", Value: "https://cdn/cat.mp4"},
			{Key: "createdAt", Value: time.Now().UTC()},
		}))

		videos, err := s.Videos(context.Background(), model.VideoFilter{Sort: model.SortPopular, Search: "c.t"})
		require.NoError(mt, err)
		require.Len(mt, videos, 1)
		assert.Equal(mt, id.Hex(), videos[0].ID)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "aggregate", evt.CommandName)

		// Search text is matched literally
		pattern := evt.Command.Lookup("pipeline", "0", "$match", "title", "$regex").StringValue()
		assert.Equal(mt, `c\.t`, pattern)
		assert.Equal(mt, ratingsCollection, evt.Command.Lookup("pipeline", "1", "$lookup", "from").StringValue())
		assert.EqualValues(mt, -1, evt.Command.Lookup("pipeline", "3", "$sort", "likeCount").AsInt64())
	})

	mt.Run("bad id is not found", func(mt *mtest.T) {
		s := mockMongoStore(mt)

		_, err := s.VideoByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}
