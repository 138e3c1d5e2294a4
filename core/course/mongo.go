package course

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const counterKey = "courses"

var bsonFields = map[string]string{
	FieldID:          "_id",
	FieldName:        "name",
	FieldCategory:    "category",
	FieldAuthor:      "author",
	FieldTags:        "tags",
	FieldDate:        "date",
	FieldIsPublished: "isPublished",
	FieldPrice:       "price",
}

// MongoStore keeps one document per course. Ids come from a counters
// document incremented atomically, so they are never reused.
type MongoStore struct {
	courses  *mongo.Collection
	counters *mongo.Collection
}

func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		courses:  db.Collection("courses"),
		counters: db.Collection("counters"),
	}

	_, err := s.courses.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "isPublished", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating course indexes: %w", err)
	}

	return s, nil
}

func (s *MongoStore) NextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": counterKey},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("incrementing course counter: %w", err)
	}
	return counter.Seq, nil
}

func (s *MongoStore) Insert(ctx context.Context, c Course) error {
	if _, err := s.courses.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

func (s *MongoStore) FetchByID(ctx context.Context, id int64) (Course, error) {
	var c Course
	if err := s.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Course{}, ErrNotFound
		}
		return Course{}, fmt.Errorf("finding course: %w", err)
	}
	return c, nil
}

func (s *MongoStore) Find(ctx context.Context, f Filter, srt Sort, fields []string) ([]Course, error) {
	filter := bson.D{}
	if f.IsPublished != nil {
		filter = append(filter, bson.E{Key: "isPublished", Value: *f.IsPublished})
	}
	if len(f.Tags) > 0 {
		filter = append(filter, bson.E{Key: "tags", Value: bson.M{"$in": f.Tags}})
	}

	key, ok := bsonFields[srt.Field]
	if !ok || key == "tags" {
		key = "name"
	}
	dir := 1
	if srt.Desc {
		dir = -1
	}
	order := bson.D{{Key: key, Value: dir}}
	if key != "_id" {
		order = append(order, bson.E{Key: "_id", Value: 1})
	}

	opts := options.Find().SetSort(order)
	if len(fields) > 0 {
		proj := bson.D{}
		for _, name := range fields {
			if k, ok := bsonFields[name]; ok && k != "_id" {
				proj = append(proj, bson.E{Key: k, Value: 1})
			}
		}
		opts.SetProjection(proj)
	}

	cur, err := s.courses.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding courses: %w", err)
	}

	out := []Course{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding courses: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Replace(ctx context.Context, c Course, prevVersion int) error {
	res, err := s.courses.ReplaceOne(ctx, bson.M{"_id": c.ID, "version": prevVersion}, c)
	if err != nil {
		return fmt.Errorf("replacing course: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := s.courses.CountDocuments(ctx, bson.M{"_id": c.ID})
	if err != nil {
		return fmt.Errorf("counting course: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *MongoStore) Delete(ctx context.Context, id int64) error {
	res, err := s.courses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.courses.Database().Client().Ping(ctx, readpref.Primary())
}
