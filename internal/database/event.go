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

// EventDatabase persists event records.
type EventDatabase struct {
	base
	compiler *translator.EventTranslator
}

// NewEventDatabase wires the event collections and registers the text index
// used for name searches.
func NewEventDatabase(ctx context.Context, colls Collections, logger *slog.Logger) (*EventDatabase, error) {
	if err := colls.Details.EnsureTextIndex(ctx, "name"); err != nil {
		return nil, err
	}
	return &EventDatabase{
		base:     newBase(colls, logger, "event-database"),
		compiler: translator.NewEventTranslator(),
	}, nil
}

// Create inserts a new event owned by the requesting user and returns the
// generated id.
func (d *EventDatabase) Create(ctx context.Context, req *models.CreateEventRequest) ([]string, error) {
	doc := store.Document{
		"name":       req.Name,
		"start":      req.Start,
		"end":        req.End,
		"venues":     req.VenueIDs,
		"attendance": req.Attendance,
		"author":     req.UserID,
	}
	if req.EntsID != nil {
		doc["ents"] = *req.EntsID
	}
	if req.StateID != nil {
		doc["state"] = *req.StateID
	}
	if req.Reserved != nil {
		doc["reserved"] = *req.Reserved
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

// Query compiles the declarative query and returns matching shallow records.
func (d *EventDatabase) Query(ctx context.Context, req *models.ReadEventRequest) ([]models.Event, error) {
	filter, err := d.compiler.Filter(req)
	if err != nil {
		return nil, err
	}

	docs, err := d.colls.Details.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, docToEvent(doc))
	}
	return events, nil
}

// Update applies a partial update to a single event, scoped to the requester
// when localOnly is set.
func (d *EventDatabase) Update(ctx context.Context, req *models.UpdateEventRequest) ([]string, error) {
	update, err := d.compiler.Update(req)
	if err != nil {
		return nil, err
	}

	extra := bson.M{}
	if req.LocalOnly {
		extra["author"] = req.UserID
	}
	return d.updateByID(ctx, req.ID, update, extra)
}

// Delete hard-deletes a single event. There is no tombstone; the record is
// unrecoverable.
func (d *EventDatabase) Delete(ctx context.Context, req *models.DeleteEventRequest) ([]string, error) {
	extra := bson.M{}
	if req.LocalOnly {
		extra["author"] = req.UserID
	}
	return d.deleteByID(ctx, req.ID, extra)
}

// Changelog returns the audit trail of one event.
func (d *EventDatabase) Changelog(ctx context.Context, id string) ([]models.ChangelogEntry, error) {
	return d.changelog(ctx, id)
}

func docToEvent(doc store.Document) models.Event {
	ev := models.Event{
		Name:       asString(doc["name"]),
		Start:      asInt64(doc["start"]),
		End:        asInt64(doc["end"]),
		Venues:     asStringSlice(doc["venues"]),
		Attendance: asInt64(doc["attendance"]),
		Ents:       asString(doc["ents"]),
		State:      asString(doc["state"]),
		Author:     asString(doc["author"]),
	}
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		ev.ID = oid.Hex()
	}
	if reserved, ok := doc["reserved"].(bool); ok {
		ev.Reserved = &reserved
	}
	if ev.Venues == nil {
		ev.Venues = []string{}
	}
	return ev
}
