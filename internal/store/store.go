// Package store provides collection-scoped access to the document store.
// Filters and update documents use the store's native operator syntax and are
// produced by the translator package; this package only executes them.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a raw stored document.
type Document = bson.M

// ErrDuplicateKey is returned when an insert or update violates a unique
// index. Callers translate it into a client-facing duplicate error.
var ErrDuplicateKey = errors.New("duplicate key")

// Collection is the capability the resource databases are built on: find,
// insert, update and delete with filter documents, plus index assertion for
// the uniqueness and text-search constraints registered at startup.
type Collection interface {
	Find(ctx context.Context, filter bson.M) ([]Document, error)
	InsertOne(ctx context.Context, doc Document) (string, error)
	UpdateOne(ctx context.Context, filter bson.M, update bson.M) (matched int64, err error)
	DeleteOne(ctx context.Context, filter bson.M) (deleted int64, err error)
	EnsureUniqueIndex(ctx context.Context, fields ...string) error
	EnsureTextIndex(ctx context.Context, field string) error
}

// Database hands out named collections.
type Database interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ValidID reports whether s is a structurally well-formed record id.
func ValidID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// ParseID converts a hex id into its stored form.
func ParseID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}
