package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/store"
)

func setupEventDB(t *testing.T) (*store.MemoryDatabase, *EventDatabase) {
	t.Helper()

	mem := store.NewMemoryDatabase()
	db, err := NewEventDatabase(context.Background(), Collections{
		Details:   mem.Collection("details"),
		Changelog: mem.Collection("changelog"),
	}, nil)
	require.NoError(t, err)
	return mem, db
}

func createEvent(t *testing.T, db *EventDatabase, req *models.CreateEventRequest) string {
	t.Helper()

	ids, err := db.Create(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	return ids[0]
}

func TestEventDatabase_CreateAndQuery(t *testing.T) {
	_, db := setupEventDB(t)
	ctx := context.Background()

	req := &models.CreateEventRequest{
		Name:       "Freshers Ball",
		Start:      1000,
		End:        2000,
		VenueIDs:   []string{"v1"},
		Attendance: 120,
	}
	req.UserID = "u1"
	id := createEvent(t, db, req)

	events, err := db.Query(ctx, &models.ReadEventRequest{
		ID: &models.IDList{IDs: []string{id}, Scalar: true},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, "Freshers Ball", events[0].Name)
	assert.Equal(t, "u1", events[0].Author)
	assert.Equal(t, []string{"v1"}, events[0].Venues)
	assert.Empty(t, events[0].Ents)
	assert.Nil(t, events[0].Reserved)
}

func TestEventDatabase_EmptyIDListMatchesNothing(t *testing.T) {
	_, db := setupEventDB(t)
	ctx := context.Background()

	req := &models.CreateEventRequest{Name: "Lone Event", Start: 1000, End: 2000, Attendance: 10}
	req.UserID = "u1"
	createEvent(t, db, req)

	events, err := db.Query(ctx, &models.ReadEventRequest{
		ID: &models.IDList{IDs: []string{}},
	})
	require.NoError(t, err)
	assert.Empty(t, events, "an explicit empty id list must not widen to a full scan")

	events, err = db.Query(ctx, &models.ReadEventRequest{})
	require.NoError(t, err)
	assert.Len(t, events, 1, "an absent id filter still matches everything")
}

func TestEventDatabase_RangeBoundsAreExclusive(t *testing.T) {
	_, db := setupEventDB(t)
	ctx := context.Background()

	req := &models.CreateEventRequest{Name: "Bounded", Start: 1000, End: 2000, Attendance: 10}
	req.UserID = "u1"
	createEvent(t, db, req)

	begin := int64(1000)
	events, err := db.Query(ctx, &models.ReadEventRequest{StartRangeBegin: &begin})
	require.NoError(t, err)
	assert.Empty(t, events, "record with start equal to the bound must be excluded")

	begin = 999
	events, err = db.Query(ctx, &models.ReadEventRequest{StartRangeBegin: &begin})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventDatabase_VenueSelectors(t *testing.T) {
	_, db := setupEventDB(t)
	ctx := context.Background()

	req := &models.CreateEventRequest{Name: "Two Venues", Start: 1, End: 2, Attendance: 5, VenueIDs: []string{"A", "B"}}
	req.UserID = "u1"
	createEvent(t, db, req)

	query := func(q *models.ReadEventRequest) int {
		events, err := db.Query(ctx, q)
		require.NoError(t, err)
		return len(events)
	}

	assert.Equal(t, 1, query(&models.ReadEventRequest{VenueIDs: []string{"A", "B"}}))
	assert.Equal(t, 0, query(&models.ReadEventRequest{VenueIDs: []string{"A", "B", "C"}}))
	assert.Equal(t, 1, query(&models.ReadEventRequest{AllVenues: []string{"A"}}))
	assert.Equal(t, 1, query(&models.ReadEventRequest{AnyVenues: []string{"C", "B"}}))
	assert.Equal(t, 0, query(&models.ReadEventRequest{AnyVenues: []string{"C", "D"}}))
}

func TestEventDatabase_Update(t *testing.T) {
	_, db := setupEventDB(t)
	ctx := context.Background()

	req := &models.CreateEventRequest{Name: "Original", Start: 1, End: 2, Attendance: 5, VenueIDs: []string{"v1"}}
	req.UserID = "u1"
	entsID := "ents-1"
	req.EntsID = &entsID
	id := createEvent(t, db, req)

	t.Run("renames and clears a reference", func(t *testing.T) {
		name := "Renamed"
		_, err := db.Update(ctx, &models.UpdateEventRequest{
			ID:     id,
			Name:   &name,
			EntsID: models.Clear[string](),
		})
		require.NoError(t, err)

		events, err := db.Query(ctx, &models.ReadEventRequest{
			ID: &models.IDList{IDs: []string{id}, Scalar: true},
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Renamed", events[0].Name)
		assert.Empty(t, events[0].Ents)
	})

	t.Run("adds and removes venues as set operations", func(t *testing.T) {
		_, err := db.Update(ctx, &models.UpdateEventRequest{
			ID:           id,
			AddVenues:    []string{"v2", "v2"},
			RemoveVenues: []string{"v1"},
		})
		require.NoError(t, err)

		events, err := db.Query(ctx, &models.ReadEventRequest{
			ID: &models.IDList{IDs: []string{id}, Scalar: true},
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, []string{"v2"}, events[0].Venues)
	})

	t.Run("localOnly blocks other users", func(t *testing.T) {
		name := "Hijacked"
		update := &models.UpdateEventRequest{ID: id, Name: &name, LocalOnly: true}
		update.UserID = "intruder"

		_, err := db.Update(ctx, update)
		require.Error(t, err)
		assert.Equal(t, "invalid entity ID", err.Error())
	})
}

func TestEventDatabase_DeleteErrors(t *testing.T) {
	_, db := setupEventDB(t)
	ctx := context.Background()

	req := &models.CreateEventRequest{Name: "Doomed", Start: 1, End: 2, Attendance: 5}
	req.UserID = "u1"
	id := createEvent(t, db, req)

	t.Run("second delete of the same id is rejected", func(t *testing.T) {
		ids, err := db.Delete(ctx, &models.DeleteEventRequest{ID: id})
		require.NoError(t, err)
		assert.Equal(t, []string{id}, ids)

		_, err = db.Delete(ctx, &models.DeleteEventRequest{ID: id})
		require.Error(t, err)
		assert.Equal(t, "invalid entity ID", err.Error())

		events, err := db.Query(ctx, &models.ReadEventRequest{})
		require.NoError(t, err)
		assert.Empty(t, events, "deleted records are unrecoverable")
	})

	t.Run("malformed id is distinct from missing id", func(t *testing.T) {
		_, err := db.Delete(ctx, &models.DeleteEventRequest{ID: "garbage"})
		require.Error(t, err)
		assert.Equal(t, "invalid entity format", err.Error())

		_, err = db.Update(ctx, &models.UpdateEventRequest{ID: "garbage", Name: strp("x")})
		require.Error(t, err)
		assert.Equal(t, "invalid entity format", err.Error())

		missing := primitive.NewObjectID().Hex()
		_, err = db.Update(ctx, &models.UpdateEventRequest{ID: missing, Name: strp("x")})
		require.Error(t, err)
		assert.Equal(t, "invalid entity ID", err.Error())
	})
}

func TestEventDatabase_Changelog(t *testing.T) {
	mem, db := setupEventDB(t)
	ctx := context.Background()

	req := &models.CreateEventRequest{Name: "Audited", Start: 1, End: 2, Attendance: 5}
	req.UserID = "u1"
	id := createEvent(t, db, req)

	name := "Audited II"
	_, err := db.Update(ctx, &models.UpdateEventRequest{ID: id, Name: &name})
	require.NoError(t, err)

	_, err = db.Delete(ctx, &models.DeleteEventRequest{ID: id})
	require.NoError(t, err)

	entries, err := db.Changelog(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.ChangeInserted, entries[0].Action)
	assert.Equal(t, models.ChangeUpdated, entries[1].Action)
	assert.Equal(t, models.ChangeDeleted, entries[2].Action)
	assert.NotZero(t, entries[0].Timestamp)
	assert.NotNil(t, entries[1].Changes)

	t.Run("changelog failure never fails the mutation", func(t *testing.T) {
		mem.FailNextInsert("changelog", errors.New("disk full"))

		other := &models.CreateEventRequest{Name: "Unaudited", Start: 1, End: 2, Attendance: 5}
		other.UserID = "u1"
		otherID := createEvent(t, db, other)

		events, err := db.Query(ctx, &models.ReadEventRequest{
			ID: &models.IDList{IDs: []string{otherID}, Scalar: true},
		})
		require.NoError(t, err)
		assert.Len(t, events, 1)

		entries, err := db.Changelog(ctx, otherID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func strp(v string) *string { return &v }
