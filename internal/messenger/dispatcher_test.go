package messenger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recordingBinding returns its own name so tests can see which binding won.
type recordingBinding struct {
	name string
}

func (b *recordingBinding) Handle(context.Context, []byte) any {
	return b.name
}

func TestDispatcher_Dispatch(t *testing.T) {
	d := NewDispatcher()
	d.Register("events.details", &recordingBinding{name: "event"})
	d.Register("events.signups", &recordingBinding{name: "signup"})
	d.Register("events.comment", &recordingBinding{name: "comment"})
	d.Register("ents.details", &recordingBinding{name: "entstate"})

	t.Run("routes by prefix", func(t *testing.T) {
		assert.Equal(t, "event", d.Dispatch(context.Background(), "events.details.create", nil))
		assert.Equal(t, "signup", d.Dispatch(context.Background(), "events.signups.read", nil))
		assert.Equal(t, "comment", d.Dispatch(context.Background(), "events.comment.delete", nil))
		assert.Equal(t, "entstate", d.Dispatch(context.Background(), "ents.details.update", nil))
	})

	t.Run("unmatched key returns nil", func(t *testing.T) {
		assert.Nil(t, d.Dispatch(context.Background(), "venues.details.read", nil))
	})

	t.Run("matches reports ownership", func(t *testing.T) {
		assert.True(t, d.Matches("events.signups.create"))
		assert.False(t, d.Matches("states.details.read"))
	})
}

func TestDispatcher_LongestPrefixWins(t *testing.T) {
	d := NewDispatcher()
	d.Register("events", &recordingBinding{name: "broad"})
	d.Register("events.signups", &recordingBinding{name: "narrow"})

	assert.Equal(t, "narrow", d.Dispatch(context.Background(), "events.signups.read", nil))
	assert.Equal(t, "broad", d.Dispatch(context.Background(), "events.details.read", nil))
}

func TestDispatcher_ReRegisterReplaces(t *testing.T) {
	d := NewDispatcher()
	d.Register("events.details", &recordingBinding{name: "first"})
	d.Register("events.details", &recordingBinding{name: "second"})

	assert.Equal(t, "second", d.Dispatch(context.Background(), "events.details.read", nil))
}
