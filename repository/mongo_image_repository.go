package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"imagegallery/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	imagesCollection   = "images"
	countersCollection = "counters"
	imageSequence      = "images"
)

// MongoImageRepository stores image metadata as documents. Numeric ids come
// from a counter document so records keep the same shape as the SQL store.
type MongoImageRepository struct {
	images   *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

func NewMongoImageRepository(db *mongo.Database) *MongoImageRepository {
	return &MongoImageRepository{
		images:   db.Collection(imagesCollection),
		counters: db.Collection(countersCollection),
		now:      time.Now,
	}
}

// EnsureIndexes creates the lookup and sort indexes. Safe to call on every start.
func (r *MongoImageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.images.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
	})
	return storeErr("create indexes", err)
}

func (r *MongoImageRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": imageSequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *MongoImageRepository) Insert(ctx context.Context, img *models.Image) (int64, error) {
	if img == nil {
		return 0, fmt.Errorf("image cannot be nil")
	}

	id, err := r.nextID(ctx)
	if err != nil {
		return 0, storeErr("next id", err)
	}

	doc := *img
	doc.ID = id
	// mongo stores milliseconds; truncate so the returned record matches what is read back
	doc.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	if _, err := r.images.InsertOne(ctx, doc); err != nil {
		return 0, storeErr("insert", err)
	}

	img.ID = doc.ID
	img.CreatedAt = doc.CreatedAt
	return id, nil
}

func (r *MongoImageRepository) ListAll(ctx context.Context) ([]models.Image, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.images.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeErr("list", err)
	}
	defer cursor.Close(ctx)

	images := make([]models.Image, 0)
	if err := cursor.All(ctx, &images); err != nil {
		return nil, storeErr("list", err)
	}
	return images, nil
}

func (r *MongoImageRepository) FindByName(ctx context.Context, name string) (*models.Image, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})

	var img models.Image
	err := r.images.FindOne(ctx, bson.M{"name": name}, opts).Decode(&img)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, storeErr("find", err)
	}
	return &img, nil
}

func (r *MongoImageRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	res, err := r.images.DeleteMany(ctx, bson.M{"name": name})
	if err != nil {
		return 0, storeErr("delete", err)
	}
	return res.DeletedCount, nil
}

// WithinTx runs fn directly. Multi-document transactions need a replica set,
// and every call here writes to a single collection.
func (r *MongoImageRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
