package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig captures document store connection settings.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// MongoDatabase implements Database on a MongoDB deployment.
type MongoDatabase struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo establishes the store connection and verifies it with a ping.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*MongoDatabase, error) {
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping store: %w", err)
	}

	return &MongoDatabase{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Collection returns a named collection handle.
func (m *MongoDatabase) Collection(name string) Collection {
	return &mongoCollection{coll: m.db.Collection(name)}
}

// Ping verifies store connectivity.
func (m *MongoDatabase) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close disconnects from the store.
func (m *MongoDatabase) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Find(ctx context.Context, filter bson.M) ([]Document, error) {
	cursor, err := c.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateKey
		}
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("store returned unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter bson.M, update bson.M) (int64, error) {
	res, err := c.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrDuplicateKey
		}
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) EnsureUniqueIndex(ctx context.Context, fields ...string) error {
	keys := bson.D{}
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (c *mongoCollection) EnsureTextIndex(ctx context.Context, field string) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: "text"}},
	})
	return err
}
