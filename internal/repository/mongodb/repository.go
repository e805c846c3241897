package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/milltrack/internal/repository/blobstore"
)

const collectionName = "blobs"

// Repository implements blobstore.Repository on MongoDB. Each logical key maps
// to one document: {_id: key, data: <json string>, updated_at}.
type Repository struct {
	client *mongo.Client
	dbName string
}

type blobDocument struct {
	ID        string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{client: client, dbName: dbName}, nil
}

func (r *Repository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(collectionName)
}

// Get implements blobstore.Repository.
func (r *Repository) Get(ctx context.Context, key string, out any) error {
	var doc blobDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return blobstore.ErrNoValue
	}
	if err != nil {
		return fmt.Errorf("load blob %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(doc.Data), out); err != nil {
		return fmt.Errorf("decode blob %s: %w", key, err)
	}
	return nil
}

// Set implements blobstore.Repository with an upsert per key.
func (r *Repository) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode blob %s: %w", key, err)
	}

	doc := blobDocument{ID: key, Data: string(raw), UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection().ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("store blob %s: %w", key, err)
	}
	return nil
}

// Delete implements blobstore.Repository. Deleting an absent key succeeds.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.collection().DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
