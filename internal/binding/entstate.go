package binding

import (
	"context"
	"log/slog"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/database"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// EntStateBinding maps ent state messages onto the ent state database. Ent
// states are plain reference data, so only the CRUD intentions apply.
type EntStateBinding struct {
	boundary
	db *database.EntStateDatabase
}

// NewEntStateBinding wires the ent state dispatcher.
func NewEntStateBinding(db *database.EntStateDatabase, logger *slog.Logger) *EntStateBinding {
	return &EntStateBinding{
		boundary: newBoundary(logger, "entstate-binding"),
		db:       db,
	}
}

// Handle dispatches one validated ent state message by intention.
func (b *EntStateBinding) Handle(ctx context.Context, raw []byte) any {
	env, err := models.ParseEnvelope(raw)
	if err != nil {
		b.logger.Warn("undecodable envelope on ent state topic", slog.String("error", err.Error()))
		return nil
	}

	switch env.Intention {
	case models.IntentionCreate:
		return b.create(ctx, env, raw)
	case models.IntentionRead:
		return b.read(ctx, env, raw)
	case models.IntentionUpdate:
		return b.update(ctx, env, raw)
	case models.IntentionDelete:
		return b.delete(ctx, env, raw)
	default:
		return b.failure(env, errInvalidIntention())
	}
}

func (b *EntStateBinding) create(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.CreateEntStateRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Create(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

func (b *EntStateBinding) read(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.ReadEntStateRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	states, err := b.db.Query(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}

	result := make([]any, len(states))
	for i, s := range states {
		result[i] = s
	}
	return success(env, result)
}

func (b *EntStateBinding) update(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.UpdateEntStateRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Update(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

func (b *EntStateBinding) delete(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.DeleteEntStateRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Delete(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}
