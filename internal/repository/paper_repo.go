package repository

import (
	"context"
	"time"

	"paperbuilder/internal/persist"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// paperRecord is the MongoDB shape of a saved paper. Body holds the JSON
// document verbatim so the stored form matches the export format.
type paperRecord struct {
	Key       string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// PaperRepo stores the serialized paper in MongoDB, one record per storage
// key. It implements persist.Storage.
type PaperRepo struct {
	collection *mongo.Collection
	key        string
}

// NewPaperRepo creates a paper repository bound to storageKey
func NewPaperRepo(db *mongo.Database, storageKey string) *PaperRepo {
	return &PaperRepo{
		collection: db.Collection("papers"),
		key:        storageKey,
	}
}

func (r *PaperRepo) Load(ctx context.Context) ([]byte, error) {
	var rec paperRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": r.key}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, persist.ErrNoData
	}
	if err != nil {
		return nil, err
	}
	return []byte(rec.Body), nil
}

func (r *PaperRepo) Save(ctx context.Context, data []byte) error {
	rec := paperRecord{
		Key:       r.key,
		Body:      string(data),
		UpdatedAt: time.Now(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": r.key}, rec, options.Replace().SetUpsert(true))
	return err
}
