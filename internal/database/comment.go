package database

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/store"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/translator"
)

// CommentDatabase persists comment records.
type CommentDatabase struct {
	base
	compiler *translator.CommentTranslator
}

// NewCommentDatabase wires the comment collections and registers the text
// index used for body searches.
func NewCommentDatabase(ctx context.Context, colls Collections, logger *slog.Logger) (*CommentDatabase, error) {
	if err := colls.Details.EnsureTextIndex(ctx, "body"); err != nil {
		return nil, err
	}
	return &CommentDatabase{
		base:     newBase(colls, logger, "comment-database"),
		compiler: translator.NewCommentTranslator(),
	}, nil
}

// Create inserts a new comment posted by the requesting user.
func (d *CommentDatabase) Create(ctx context.Context, req *models.CreateCommentRequest) ([]string, error) {
	doc := store.Document{
		"assetType": req.AssetType,
		"assetID":   req.AssetID,
		"poster":    req.UserID,
		"posted":    d.now().UnixMilli(),
		"body":      req.Body,
	}
	if req.Topic != nil {
		doc["topic"] = *req.Topic
	}
	if req.RequiresAttention != nil {
		doc["requiresAttention"] = *req.RequiresAttention
	} else {
		doc["requiresAttention"] = false
	}

	id, err := d.colls.Details.InsertOne(ctx, doc)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, models.NewClientError("duplicate entity provided")
		}
		return nil, err
	}

	d.logChange(ctx, id, models.ChangeInserted, nil)
	return []string{id}, nil
}

// Query compiles the declarative query and returns matching records.
func (d *CommentDatabase) Query(ctx context.Context, req *models.ReadCommentRequest) ([]models.Comment, error) {
	filter, err := d.compiler.Filter(req)
	if err != nil {
		return nil, err
	}

	docs, err := d.colls.Details.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(docs))
	for _, doc := range docs {
		comments = append(comments, docToComment(doc))
	}
	return comments, nil
}

// Update applies a partial update to a single comment, scoped to its poster
// when localOnly is set.
func (d *CommentDatabase) Update(ctx context.Context, req *models.UpdateCommentRequest) ([]string, error) {
	update, err := d.compiler.Update(req)
	if err != nil {
		return nil, err
	}

	extra := bson.M{}
	if req.LocalOnly {
		extra["poster"] = req.UserID
	}
	return d.updateByID(ctx, req.ID, update, extra)
}

// Delete hard-deletes a single comment.
func (d *CommentDatabase) Delete(ctx context.Context, req *models.DeleteCommentRequest) ([]string, error) {
	extra := bson.M{}
	if req.LocalOnly {
		extra["poster"] = req.UserID
	}
	return d.deleteByID(ctx, req.ID, extra)
}

// Changelog returns the audit trail of one comment.
func (d *CommentDatabase) Changelog(ctx context.Context, id string) ([]models.ChangelogEntry, error) {
	return d.changelog(ctx, id)
}

func docToComment(doc store.Document) models.Comment {
	c := models.Comment{
		AssetType:         asString(doc["assetType"]),
		AssetID:           asString(doc["assetID"]),
		Poster:            asString(doc["poster"]),
		Posted:            asInt64(doc["posted"]),
		Topic:             asString(doc["topic"]),
		Body:              asString(doc["body"]),
		RequiresAttention: asBool(doc["requiresAttention"]),
	}
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	if attended, ok := doc["attendedDate"].(int64); ok {
		c.AttendedDate = &attended
	}
	return c
}
