package database

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/store"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/translator"
)

// EntStateDatabase persists ent state records.
type EntStateDatabase struct {
	base
	compiler *translator.EntStateTranslator
}

// NewEntStateDatabase wires the ent state collections.
func NewEntStateDatabase(ctx context.Context, colls Collections, logger *slog.Logger) (*EntStateDatabase, error) {
	if err := colls.Details.EnsureTextIndex(ctx, "name"); err != nil {
		return nil, err
	}
	return &EntStateDatabase{
		base:     newBase(colls, logger, "entstate-database"),
		compiler: translator.NewEntStateTranslator(),
	}, nil
}

// Create inserts a new ent state and returns the generated id.
func (d *EntStateDatabase) Create(ctx context.Context, req *models.CreateEntStateRequest) ([]string, error) {
	doc := store.Document{
		"name":  req.Name,
		"icon":  req.Icon,
		"color": req.Color,
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
func (d *EntStateDatabase) Query(ctx context.Context, req *models.ReadEntStateRequest) ([]models.EntState, error) {
	filter, err := d.compiler.Filter(req)
	if err != nil {
		return nil, err
	}

	docs, err := d.colls.Details.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	states := make([]models.EntState, 0, len(docs))
	for _, doc := range docs {
		states = append(states, docToEntState(doc))
	}
	return states, nil
}

// Update applies a partial update to a single ent state.
func (d *EntStateDatabase) Update(ctx context.Context, req *models.UpdateEntStateRequest) ([]string, error) {
	update, err := d.compiler.Update(req)
	if err != nil {
		return nil, err
	}
	return d.updateByID(ctx, req.ID, update, nil)
}

// Delete hard-deletes a single ent state.
func (d *EntStateDatabase) Delete(ctx context.Context, req *models.DeleteEntStateRequest) ([]string, error) {
	return d.deleteByID(ctx, req.ID, nil)
}

// Changelog returns the audit trail of one ent state.
func (d *EntStateDatabase) Changelog(ctx context.Context, id string) ([]models.ChangelogEntry, error) {
	return d.changelog(ctx, id)
}

func docToEntState(doc store.Document) models.EntState {
	s := models.EntState{
		Name:  asString(doc["name"]),
		Icon:  asString(doc["icon"]),
		Color: asString(doc["color"]),
	}
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		s.ID = oid.Hex()
	}
	return s
}
