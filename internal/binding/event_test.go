package binding

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/database"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/store"
)

func setupEventBinding(t *testing.T) (*database.EventDatabase, *EventBinding) {
	t.Helper()

	mem := store.NewMemoryDatabase()
	db, err := database.NewEventDatabase(context.Background(), database.Collections{
		Details:   mem.Collection("details"),
		Changelog: mem.Collection("changelog"),
	}, nil)
	require.NoError(t, err)
	return db, NewEventBinding(db, nil)
}

func message(t *testing.T, fields map[string]any) []byte {
	t.Helper()

	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return raw
}

func TestEventBinding_CreateAndRead(t *testing.T) {
	_, b := setupEventBinding(t)
	ctx := context.Background()

	resp := b.Handle(ctx, message(t, map[string]any{
		"msg_id":        1,
		"status":        0,
		"msg_intention": "CREATE",
		"userID":        "u1",
		"name":          "Demo",
		"start":         1000,
		"end":           2000,
		"venueIDs":      []string{"v1"},
		"attendance":    10,
	}))

	envelope, ok := resp.(*models.ResponseEnvelope)
	require.True(t, ok)
	assert.Equal(t, int64(1), envelope.MsgID)
	assert.Equal(t, models.StatusSuccess, envelope.Status)
	require.Len(t, envelope.Result, 1)
	id, ok := envelope.Result[0].(string)
	require.True(t, ok)

	resp = b.Handle(ctx, message(t, map[string]any{
		"msg_id":        2,
		"status":        0,
		"msg_intention": "READ",
		"userID":        "u1",
		"id":            id,
	}))

	envelope, ok = resp.(*models.ResponseEnvelope)
	require.True(t, ok)
	assert.Equal(t, models.StatusSuccess, envelope.Status)
	require.Len(t, envelope.Result, 1)
	event, ok := envelope.Result[0].(models.Event)
	require.True(t, ok)
	assert.Equal(t, "Demo", event.Name)
}

func TestEventBinding_Failures(t *testing.T) {
	_, b := setupEventBinding(t)
	ctx := context.Background()

	t.Run("unknown intention fails", func(t *testing.T) {
		resp := b.Handle(ctx, message(t, map[string]any{
			"msg_id":        3,
			"status":        0,
			"msg_intention": "EXPLODE",
		}))

		envelope, ok := resp.(*models.ResponseEnvelope)
		require.True(t, ok)
		assert.Equal(t, models.StatusFail, envelope.Status)
		assert.Equal(t, []any{"invalid message intention"}, envelope.Result)
	})

	t.Run("malformed id filter fails", func(t *testing.T) {
		resp := b.Handle(ctx, message(t, map[string]any{
			"msg_id":        4,
			"status":        0,
			"msg_intention": "READ",
			"id":            "not-an-id",
		}))

		envelope, ok := resp.(*models.ResponseEnvelope)
		require.True(t, ok)
		assert.Equal(t, models.StatusFail, envelope.Status)
		assert.Equal(t, []any{"Invalid ID"}, envelope.Result)
	})

	t.Run("empty update fails", func(t *testing.T) {
		resp := b.Handle(ctx, message(t, map[string]any{
			"msg_id":        5,
			"status":        0,
			"msg_intention": "CREATE",
			"name":          "Victim",
			"start":         1,
			"end":           2,
			"venueIDs":      []string{"v1"},
			"attendance":    1,
		}))
		envelope := resp.(*models.ResponseEnvelope)
		id := envelope.Result[0].(string)

		resp = b.Handle(ctx, message(t, map[string]any{
			"msg_id":        6,
			"status":        0,
			"msg_intention": "UPDATE",
			"id":            id,
		}))
		envelope, ok := resp.(*models.ResponseEnvelope)
		require.True(t, ok)
		assert.Equal(t, models.StatusFail, envelope.Status)
		assert.Equal(t, []any{"no operations provided"}, envelope.Result)
	})
}

func TestEventBinding_Discover(t *testing.T) {
	db, b := setupEventBinding(t)
	ctx := context.Background()

	create := func(name, venue, ents, state string) string {
		req := &models.CreateEventRequest{Name: name, Start: 1, End: 2, Attendance: 5, VenueIDs: []string{venue}}
		req.UserID = "u1"
		if ents != "" {
			req.EntsID = &ents
		}
		if state != "" {
			req.StateID = &state
		}
		ids, err := db.Create(ctx, req)
		require.NoError(t, err)
		return ids[0]
	}

	eventID := create("A", "v1", "e1", "s1")
	create("B", "v1", "e1", "")
	create("C", "v2", "", "s1")

	discover := func(assetType, assetID string) *models.DiscoverResponse {
		resp := b.Handle(ctx, message(t, map[string]any{
			"msg_id":        10,
			"status":        0,
			"msg_intention": "DISCOVER",
			"assetType":     assetType,
			"assetID":       assetID,
		}))
		out, ok := resp.(*models.DiscoverResponse)
		require.True(t, ok)
		assert.Equal(t, models.StatusSuccess, out.Status)
		return out
	}

	t.Run("venue references restrict", func(t *testing.T) {
		resp := discover("venue", "v1")
		assert.Equal(t, 2, resp.Restrict)
		assert.Equal(t, 0, resp.Modify)
	})

	t.Run("ent references modify", func(t *testing.T) {
		resp := discover("ent", "e1")
		assert.Equal(t, 2, resp.Modify)
	})

	t.Run("state references modify", func(t *testing.T) {
		resp := discover("state", "s1")
		assert.Equal(t, 2, resp.Modify)
	})

	t.Run("own id counts itself", func(t *testing.T) {
		resp := discover("event", eventID)
		assert.Equal(t, 1, resp.Modify)
		assert.Equal(t, models.IntentionRead, resp.Intention)
	})

	t.Run("unrelated asset types count nothing", func(t *testing.T) {
		resp := discover("user", "u1")
		assert.Equal(t, 0, resp.Modify)
		assert.Equal(t, 0, resp.Restrict)
		assert.Equal(t, models.IntentionDiscover, resp.Intention,
			"unreferenced asset types echo the request intention")
	})
}

func TestEventBinding_DiscoverDelete(t *testing.T) {
	db, b := setupEventBinding(t)
	ctx := context.Background()

	ents := "e1"
	req := &models.CreateEventRequest{Name: "A", Start: 1, End: 2, Attendance: 5, EntsID: &ents}
	req.UserID = "u1"
	ids, err := db.Create(ctx, req)
	require.NoError(t, err)

	t.Run("deleting an ent detaches its references", func(t *testing.T) {
		resp := b.Handle(ctx, message(t, map[string]any{
			"msg_id":        11,
			"status":        0,
			"msg_intention": "DISCOVER_DELETE",
			"assetType":     "ent",
			"assetID":       "e1",
		}))

		out, ok := resp.(*models.DiscoverDeleteResponse)
		require.True(t, ok)
		assert.True(t, out.Successful)
		assert.Equal(t, 1, out.Modified)

		events, err := db.Query(ctx, &models.ReadEventRequest{
			ID: &models.IDList{IDs: []string{ids[0]}, Scalar: true},
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Empty(t, events[0].Ents, "dangling reference must be cleared")
	})

	t.Run("deleting an event removes the record", func(t *testing.T) {
		resp := b.Handle(ctx, message(t, map[string]any{
			"msg_id":        12,
			"status":        0,
			"msg_intention": "DISCOVER_DELETE",
			"assetType":     "event",
			"assetID":       ids[0],
		}))

		out, ok := resp.(*models.DiscoverDeleteResponse)
		require.True(t, ok)
		assert.True(t, out.Successful)
		assert.Equal(t, 1, out.Modified)

		events, err := db.Query(ctx, &models.ReadEventRequest{})
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("deleting a missing event reports failure", func(t *testing.T) {
		resp := b.Handle(ctx, message(t, map[string]any{
			"msg_id":        13,
			"status":        0,
			"msg_intention": "DISCOVER_DELETE",
			"assetType":     "event",
			"assetID":       fmt.Sprintf("%024x", 1),
		}))

		out, ok := resp.(*models.DiscoverDeleteResponse)
		require.True(t, ok)
		assert.False(t, out.Successful)
		assert.Equal(t, 0, out.Modified)
	})
}
