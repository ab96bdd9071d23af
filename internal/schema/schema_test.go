package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValidator(t *testing.T) {
	v, err := NewValidator("event")
	require.NoError(t, err)

	t.Run("accepts a full create message", func(t *testing.T) {
		assert.True(t, v.Validate([]byte(`{
			"msg_id": 1,
			"status": 0,
			"msg_intention": "CREATE",
			"userID": "abc",
			"name": "Freshers Ball",
			"start": 1000,
			"end": 2000,
			"venueIDs": ["venue-1"],
			"attendance": 120
		}`)))
	})

	t.Run("accepts a minimal read message", func(t *testing.T) {
		assert.True(t, v.Validate([]byte(`{"msg_id": 4, "status": 0, "msg_intention": "READ"}`)))
	})

	t.Run("rejects create missing attendance", func(t *testing.T) {
		assert.False(t, v.Validate([]byte(`{
			"msg_id": 1,
			"status": 0,
			"msg_intention": "CREATE",
			"name": "Freshers Ball",
			"start": 1000,
			"end": 2000,
			"venueIDs": ["venue-1"]
		}`)))
	})

	t.Run("rejects missing msg_id", func(t *testing.T) {
		assert.False(t, v.Validate([]byte(`{"status": 0, "msg_intention": "READ"}`)))
	})

	t.Run("rejects status of wrong type", func(t *testing.T) {
		assert.False(t, v.Validate([]byte(`{"msg_id": 1, "status": "ok", "msg_intention": "READ"}`)))
	})

	t.Run("rejects update without id", func(t *testing.T) {
		assert.False(t, v.Validate([]byte(`{"msg_id": 1, "status": 0, "msg_intention": "UPDATE", "name": "x"}`)))
	})

	t.Run("accepts id as string or array", func(t *testing.T) {
		assert.True(t, v.Validate([]byte(`{"msg_id": 1, "status": 0, "msg_intention": "READ", "id": "a"}`)))
		assert.True(t, v.Validate([]byte(`{"msg_id": 1, "status": 0, "msg_intention": "READ", "id": ["a", "b"]}`)))
		assert.False(t, v.Validate([]byte(`{"msg_id": 1, "status": 0, "msg_intention": "READ", "id": 7}`)))
	})
}

func TestSignupValidator(t *testing.T) {
	v, err := NewValidator("signup")
	require.NoError(t, err)

	t.Run("accepts a create message", func(t *testing.T) {
		assert.True(t, v.Validate([]byte(`{
			"msg_id": 2,
			"status": 0,
			"msg_intention": "CREATE",
			"eventID": "ev-1",
			"role": "lighting"
		}`)))
	})

	t.Run("rejects create missing role", func(t *testing.T) {
		assert.False(t, v.Validate([]byte(`{
			"msg_id": 2,
			"status": 0,
			"msg_intention": "CREATE",
			"eventID": "ev-1"
		}`)))
	})
}

func TestEntStateValidator(t *testing.T) {
	v, err := NewValidator("entstate")
	require.NoError(t, err)

	t.Run("accepts a create message", func(t *testing.T) {
		assert.True(t, v.Validate([]byte(`{
			"msg_id": 3,
			"status": 0,
			"msg_intention": "CREATE",
			"name": "signup",
			"icon": "pen",
			"color": "#123456"
		}`)))
	})

	t.Run("rejects create missing color", func(t *testing.T) {
		assert.False(t, v.Validate([]byte(`{
			"msg_id": 3,
			"status": 0,
			"msg_intention": "CREATE",
			"name": "signup",
			"icon": "pen"
		}`)))
	})
}

func TestComposite(t *testing.T) {
	c, err := NewComposite()
	require.NoError(t, err)

	t.Run("accepts messages from any family", func(t *testing.T) {
		assert.True(t, c.Validate([]byte(`{"msg_id": 1, "status": 0, "msg_intention": "READ"}`)))
		assert.True(t, c.Validate([]byte(`{
			"msg_id": 2,
			"status": 0,
			"msg_intention": "CREATE",
			"eventID": "ev-1",
			"role": "sound"
		}`)))
	})

	t.Run("rejects malformed messages", func(t *testing.T) {
		assert.False(t, c.Validate([]byte(`{"msg_intention": "READ"}`)))
		assert.False(t, c.Validate([]byte(`not json`)))
	})
}
