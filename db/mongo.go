package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"videoshare/video-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	videosCollection   = "videos"
	commentsCollection = "comments"
	ratingsCollection  = "ratings"
	usersCollection    = "users"
)

// MongoStore keeps metadata in MongoDB (or Cosmos DB through its Mongo API).
// The client is connected on first use and shared by every request.
type MongoStore struct {
	name   string
	client *Lazy[*mongo.Client]
}

type videoDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	UploaderName string             `bson:"uploaderName"`
	Genre        string             `bson:"genre"`
	CreatorID    string             `bson:"creatorId"`
	URL          string             `bson:"url"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d videoDoc) toModel() model.Video {
	return model.Video{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		UploaderName: d.UploaderName,
		Genre:        d.Genre,
		CreatorID:    d.CreatorID,
		URL:          d.URL,
		CreatedAt:    d.CreatedAt,
	}
}

type commentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	VideoID    string             `bson:"videoId"`
	AuthorID   string             `bson:"uid"`
	AuthorName *string            `bson:"authorName,omitempty"`
	Text       string             `bson:"text"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

type userDoc struct {
	UID       string    `bson:"uid"`
	Email     string    `bson:"email"`
	Name      *string   `bson:"name,omitempty"`
	DOB       *string   `bson:"dob,omitempty"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func NewMongo(uri, name string) *MongoStore {
	return &MongoStore{
		name: name,
		client: NewLazy(func(ctx context.Context) (*mongo.Client, error) {
			return connectMongo(ctx, uri, name)
		}),
	}
}

func connectMongo(ctx context.Context, uri, name string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	zap.L().Debug("Connecting to MongoDB", zap.String("database", name))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB, %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB, %w", err)
	}

	database := client.Database(name)

	indexes := map[string]mongo.IndexModel{
		ratingsCollection: {
			Keys:    bson.D{{Key: "videoId", Value: 1}, {Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		usersCollection: {
			Keys:    bson.D{{Key: "uid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		commentsCollection: {
			Keys: bson.D{{Key: "videoId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		videosCollection: {
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	for coll, idx := range indexes {
		if _, err := database.Collection(coll).Indexes().CreateOne(ctx, idx); err != nil {
			zap.L().Warn("Failed to create index", zap.String("collection", coll), zap.Error(err))
		}
	}

	zap.L().Info("MongoDB connected", zap.String("database", name))
	return client, nil
}

func (s *MongoStore) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := s.client.Get(ctx)
	if err != nil {
		return nil, err
	}

	return client.Database(s.name).Collection(name), nil
}

func (s *MongoStore) CreateVideo(ctx context.Context, v *model.Video) error {
	coll, err := s.collection(ctx, videosCollection)
	if err != nil {
		return err
	}

	res, err := coll.InsertOne(ctx, videoDoc{
		Title:        v.Title,
		UploaderName: v.UploaderName,
		Genre:        v.Genre,
		CreatorID:    v.CreatorID,
		URL:          v.URL,
		CreatedAt:    v.CreatedAt,
	})
	if err != nil {
		return err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		v.ID = oid.Hex()
	}

	return nil
}

func (s *MongoStore) Videos(ctx context.Context, f model.VideoFilter) ([]model.Video, error) {
	f = normalizeVideoFilter(f)

	coll, err := s.collection(ctx, videosCollection)
	if err != nil {
		return nil, err
	}

	filter := bson.M{}
	if f.Search != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	if f.CreatorID != "" {
		filter["creatorId"] = f.CreatorID
	}

	var cursor *mongo.Cursor

	switch f.Sort {
	case model.SortPopular:
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: filter}},
			{{Key: "$lookup", Value: bson.M{
				"from": ratingsCollection,
				"let":  bson.M{"vid": bson.M{"$toString": "$_id"}},
				"pipeline": bson.A{
					bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
						bson.M{"$eq": bson.A{"$videoId", "$$vid"}},
						bson.M{"$eq": bson.A{"$value", model.RatingLike}},
					}}}},
				},
				"as": "likeDocs",
			}}},
			{{Key: "$addFields", Value: bson.M{"likeCount": bson.M{"$size": "$likeDocs"}}}},
			{{Key: "$sort", Value: bson.D{{Key: "likeCount", Value: -1}, {Key: "createdAt", Value: -1}}}},
			{{Key: "$skip", Value: int64(f.Skip)}},
			{{Key: "$limit", Value: int64(f.Limit)}},
			{{Key: "$project", Value: bson.M{"likeDocs": 0, "likeCount": 0}}},
		}

		cursor, err = coll.Aggregate(ctx, pipeline)
	default:
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64(f.Skip)).
			SetLimit(int64(f.Limit))

		cursor, err = coll.Find(ctx, filter, opts)
	}
	if err != nil {
		return nil, err
	}

	var docs []videoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	videos := make([]model.Video, 0, len(docs))
	for _, d := range docs {
		videos = append(videos, d.toModel())
	}

	return videos, nil
}

func (s *MongoStore) VideoByID(ctx context.Context, id string) (*model.Video, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	coll, err := s.collection(ctx, videosCollection)
	if err != nil {
		return nil, err
	}

	var doc videoDoc
	err = coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	v := doc.toModel()
	return &v, nil
}

func (s *MongoStore) AddComment(ctx context.Context, c *model.Comment) error {
	coll, err := s.collection(ctx, commentsCollection)
	if err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	res, err := coll.InsertOne(ctx, commentDoc{
		VideoID:    c.VideoID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt,
	})
	if err != nil {
		return err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}

	return nil
}

func (s *MongoStore) Comments(ctx context.Context, videoID string, limit int) ([]model.Comment, error) {
	if limit <= 0 {
		limit = defaultCommentLimit
	}

	coll, err := s.collection(ctx, commentsCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, bson.M{"videoId": videoID}, opts)
	if err != nil {
		return nil, err
	}

	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	comments := make([]model.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, model.Comment{
			ID:         d.ID.Hex(),
			VideoID:    d.VideoID,
			AuthorID:   d.AuthorID,
			AuthorName: d.AuthorName,
			Text:       d.Text,
			CreatedAt:  d.CreatedAt,
		})
	}

	return comments, nil
}

func (s *MongoStore) UpsertRating(ctx context.Context, videoID, uid string, value int) error {
	if !validRating(value) {
		return ErrInvalidRating
	}

	coll, err := s.collection(ctx, ratingsCollection)
	if err != nil {
		return err
	}

	filter := bson.M{"videoId": videoID, "uid": uid}

	if value == model.RatingClear {
		_, err = coll.DeleteOne(ctx, filter)
		return err
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set":         bson.M{"videoId": videoID, "uid": uid, "value": value, "updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}

	_, err = coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (s *MongoStore) RatingSummary(ctx context.Context, videoID string) (model.RatingSummary, error) {
	var summary model.RatingSummary

	coll, err := s.collection(ctx, ratingsCollection)
	if err != nil {
		return summary, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"videoId": videoID}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$videoId",
			"likes":    bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$value", model.RatingLike}}, 1, 0}}},
			"dislikes": bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$value", model.RatingDislike}}, 1, 0}}},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return summary, err
	}

	var rows []struct {
		Likes    int64 `bson:"likes"`
		Dislikes int64 `bson:"dislikes"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return summary, err
	}

	if len(rows) > 0 {
		summary.Likes = rows[0].Likes
		summary.Dislikes = rows[0].Dislikes
	}

	return summary, nil
}

func (s *MongoStore) UpsertProfile(ctx context.Context, u *model.User) error {
	coll, err := s.collection(ctx, usersCollection)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	set := bson.M{"uid": u.UID, "email": u.Email, "updatedAt": now}
	setOnInsert := bson.M{"createdAt": now}

	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.DOB != nil {
		set["dob"] = *u.DOB
	}

	if u.Role != "" {
		set["role"] = u.Role
	} else {
		setOnInsert["role"] = model.RoleConsumer
	}

	_, err = coll.UpdateOne(ctx,
		bson.M{"uid": u.UID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) PromoteToCreator(ctx context.Context, uid, email string) error {
	coll, err := s.collection(ctx, usersCollection)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	set := bson.M{"uid": uid, "role": model.RoleCreator, "updatedAt": now}
	setOnInsert := bson.M{"createdAt": now}

	if email != "" {
		set["email"] = email
	} else {
		setOnInsert["email"] = ""
	}

	_, err = coll.UpdateOne(ctx,
		bson.M{"uid": uid},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) Profiles(ctx context.Context) ([]model.User, error) {
	coll, err := s.collection(ctx, usersCollection)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, model.User{
			UID:       d.UID,
			Email:     d.Email,
			Name:      d.Name,
			DOB:       d.DOB,
			Role:      d.Role,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}

	return users, nil
}

func (s *MongoStore) Close() error {
	client, ok := s.client.Take()
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return client.Disconnect(ctx)
}
