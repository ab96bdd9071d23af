package binding

import (
	"context"
	"log/slog"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/database"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// EventBinding maps event messages onto the event database.
type EventBinding struct {
	boundary
	db *database.EventDatabase
}

// NewEventBinding wires the event dispatcher.
func NewEventBinding(db *database.EventDatabase, logger *slog.Logger) *EventBinding {
	return &EventBinding{
		boundary: newBoundary(logger, "event-binding"),
		db:       db,
	}
}

// Handle dispatches one validated event message by intention.
func (b *EventBinding) Handle(ctx context.Context, raw []byte) any {
	env, err := models.ParseEnvelope(raw)
	if err != nil {
		b.logger.Warn("undecodable envelope on event topic", slog.String("error", err.Error()))
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
	case models.IntentionDiscover:
		return b.discover(ctx, env, raw)
	case models.IntentionDiscoverDelete:
		return b.discoverDelete(ctx, env, raw)
	default:
		return b.failure(env, errInvalidIntention())
	}
}

func (b *EventBinding) create(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.CreateEventRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Create(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

func (b *EventBinding) read(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.ReadEventRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	events, err := b.db.Query(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}

	result := make([]any, len(events))
	for i, ev := range events {
		result[i] = ev
	}
	return success(env, result)
}

func (b *EventBinding) update(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.UpdateEventRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Update(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

func (b *EventBinding) delete(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.DeleteEventRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	ids, err := b.db.Delete(ctx, &req)
	if err != nil {
		return b.failure(env, err)
	}
	return success(env, models.IDs(ids))
}

// discover counts how many events reference a foreign asset. Venue
// references restrict deletion elsewhere; ent, state and event references
// can be modified, so they count towards modify instead.
func (b *EventBinding) discover(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.DiscoverRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	resp := &models.DiscoverResponse{
		MsgID:     env.MsgID,
		Intention: models.IntentionRead,
		UserID:    env.UserID,
		Status:    models.StatusSuccess,
		RequestID: env.RequestID,
	}

	var (
		query models.ReadEventRequest
		count *int
	)
	switch req.AssetType {
	case "venue":
		query.AnyVenues = []string{req.AssetID}
		count = &resp.Restrict
	case "ent":
		query.EntsID = &req.AssetID
		count = &resp.Modify
	case "state":
		query.StateID = &req.AssetID
		count = &resp.Modify
	case "event":
		query.ID = &models.IDList{IDs: []string{req.AssetID}, Scalar: true}
		count = &resp.Modify
	default:
		// Unreferenced asset types echo the request's own intention with
		// zero counts; known types report as READ.
		b.logger.Debug("discovery for unreferenced asset type",
			slog.String("assetType", req.AssetType))
		resp.Intention = env.Intention
		return resp
	}

	events, err := b.db.Query(ctx, &query)
	if err != nil {
		return b.failure(env, err)
	}
	*count = len(events)
	return resp
}

// discoverDelete detaches or removes every event referencing a deleted
// foreign asset: ent and state references are nulled out, while deleting an
// event asset hard-deletes the record itself. Partial failure is reported
// through the successful flag rather than a failure envelope.
func (b *EventBinding) discoverDelete(ctx context.Context, env models.Envelope, raw []byte) any {
	var req models.DiscoverRequest
	if err := decode(raw, &req); err != nil {
		return b.failure(env, err)
	}

	resp := &models.DiscoverDeleteResponse{
		MsgID:     env.MsgID,
		Intention: models.IntentionDelete,
		UserID:    env.UserID,
		Status:    models.StatusSuccess,
		RequestID: env.RequestID,
	}

	switch req.AssetType {
	case "ent":
		resp.Modified, resp.Successful = b.detachAll(ctx, req.AssetID, func(id string) *models.UpdateEventRequest {
			return &models.UpdateEventRequest{ID: id, EntsID: models.Clear[string]()}
		}, func(q *models.ReadEventRequest) {
			q.EntsID = &req.AssetID
		})
	case "state":
		resp.Modified, resp.Successful = b.detachAll(ctx, req.AssetID, func(id string) *models.UpdateEventRequest {
			return &models.UpdateEventRequest{ID: id, StateID: models.Clear[string]()}
		}, func(q *models.ReadEventRequest) {
			q.StateID = &req.AssetID
		})
	case "event":
		ids, err := b.db.Delete(ctx, &models.DeleteEventRequest{ID: req.AssetID})
		if err != nil {
			b.logger.Warn("failed to delete referenced event",
				slog.String("assetID", req.AssetID),
				slog.String("error", err.Error()))
			break
		}
		resp.Modified = len(ids)
		resp.Successful = true
	default:
		resp.Successful = true
	}

	return resp
}

// detachAll finds every event matching the asset filter and clears the
// dangling reference on each one.
func (b *EventBinding) detachAll(
	ctx context.Context,
	assetID string,
	clear func(id string) *models.UpdateEventRequest,
	filter func(q *models.ReadEventRequest),
) (int, bool) {
	var query models.ReadEventRequest
	filter(&query)

	events, err := b.db.Query(ctx, &query)
	if err != nil {
		b.logger.Warn("failed to find events referencing asset",
			slog.String("assetID", assetID),
			slog.String("error", err.Error()))
		return 0, false
	}

	for _, ev := range events {
		if _, err := b.db.Update(ctx, clear(ev.ID)); err != nil {
			b.logger.Warn("failed to detach asset reference",
				slog.String("eventID", ev.ID),
				slog.String("assetID", assetID),
				slog.String("error", err.Error()))
			return 0, false
		}
	}
	return len(events), true
}
