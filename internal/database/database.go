// Package database implements the per-resource persistence layer: a details
// collection holding current state and a changelog collection receiving one
// append-only audit entry per successful mutation.
package database

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/metrics"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/store"
)

// Collections pairs the two collections every resource owns.
type Collections struct {
	Details   store.Collection
	Changelog store.Collection
}

// base carries the shared mechanics of every resource database.
type base struct {
	colls  Collections
	logger *slog.Logger
	now    func() time.Time
}

func newBase(colls Collections, logger *slog.Logger, component string) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		colls:  colls,
		logger: logger.With(slog.String("component", component)),
		now:    time.Now,
	}
}

// logChange appends an audit entry. The changelog is best-effort: a failed
// write is logged and swallowed, never rolling back the primary mutation.
func (b *base) logChange(ctx context.Context, id, action string, changes any) {
	entry := store.Document{
		"id":        id,
		"action":    action,
		"timestamp": b.now().UnixMilli(),
	}
	if changes != nil {
		entry["changes"] = changes
	}
	if _, err := b.colls.Changelog.InsertOne(ctx, entry); err != nil {
		metrics.ChangelogWriteErrors.Inc()
		b.logger.Warn("failed to save changelog entry",
			slog.String("id", id),
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}

// deleteByID removes a single record after validating the id shape. Zero
// matched documents is indistinguishable from a non-existent id by design.
func (b *base) deleteByID(ctx context.Context, id string, extra bson.M) ([]string, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, models.NewClientError("invalid entity format")
	}

	filter := bson.M{"_id": oid}
	for k, v := range extra {
		filter[k] = v
	}

	deleted, err := b.colls.Details.DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, models.NewClientError("invalid entity ID")
	}

	b.logChange(ctx, id, models.ChangeDeleted, nil)
	return []string{id}, nil
}

// updateByID applies an update document to a single record, optionally
// scoped by an ownership clause. A zero-match update reports "invalid entity
// ID" whether the record is missing or owned by someone else; the two cases
// are deliberately indistinguishable.
func (b *base) updateByID(ctx context.Context, id string, update bson.M, extra bson.M) ([]string, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, models.NewClientError("invalid entity format")
	}

	filter := bson.M{"_id": oid}
	for k, v := range extra {
		filter[k] = v
	}

	matched, err := b.colls.Details.UpdateOne(ctx, filter, update)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, models.NewClientError("duplicate entity provided")
		}
		return nil, err
	}
	if matched == 0 {
		return nil, models.NewClientError("invalid entity ID")
	}

	b.logChange(ctx, id, models.ChangeUpdated, update)
	return []string{id}, nil
}

// changelog retrieves the audit trail of one record.
func (b *base) changelog(ctx context.Context, id string) ([]models.ChangelogEntry, error) {
	docs, err := b.colls.Changelog.Find(ctx, bson.M{"id": id})
	if err != nil {
		return nil, err
	}

	entries := make([]models.ChangelogEntry, 0, len(docs))
	for _, doc := range docs {
		entry := models.ChangelogEntry{
			ID:      asString(doc["id"]),
			Action:  asString(doc["action"]),
			Changes: doc["changes"],
		}
		if ts, ok := doc["timestamp"].(int64); ok {
			entry.Timestamp = ts
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case bson.A:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
