package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	t.Run("headers only, payload ignored", func(t *testing.T) {
		env, err := ParseEnvelope([]byte(`{
			"msg_id": 42,
			"msg_intention": "UPDATE",
			"userID": "u1",
			"status": 0,
			"requestID": "r-1",
			"name": "Renamed"
		}`))
		require.NoError(t, err)
		assert.Equal(t, int64(42), env.MsgID)
		assert.Equal(t, IntentionUpdate, env.Intention)
		assert.Equal(t, "u1", env.UserID)
		assert.Equal(t, "r-1", env.RequestID)
	})

	t.Run("undecodable body", func(t *testing.T) {
		_, err := ParseEnvelope([]byte(`not json`))
		assert.Error(t, err)
	})
}

func TestIDs(t *testing.T) {
	assert.Equal(t, []any{"a", "b"}, IDs([]string{"a", "b"}))
	assert.Empty(t, IDs(nil))
}

func TestResponseEnvelope_RequestIDOmitted(t *testing.T) {
	data, err := json.Marshal(&ResponseEnvelope{
		MsgID:     1,
		Intention: IntentionRead,
		UserID:    "u1",
		Status:    StatusSuccess,
		Result:    []any{},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "requestID")
	assert.Contains(t, string(data), `"result":[]`)
}
