package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/binding"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/database"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/dedup"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/messaging"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/schema"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/store"
)

// fakeClient is an in-process messaging.Client: queue subscriptions are
// recorded and messages are delivered by calling Deliver directly.
type fakeClient struct {
	mu        sync.Mutex
	handlers  map[string]messaging.MessageHandler
	published []publishedMessage
	connected bool
}

type publishedMessage struct {
	subject string
	data    []byte
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]messaging.MessageHandler), connected: true}
}

func (f *fakeClient) Publish(_ context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedMessage{subject: subject, data: data})
	return nil
}

func (f *fakeClient) Subscribe(subject string, handler messaging.MessageHandler) (messaging.Subscription, error) {
	return f.QueueSubscribe(subject, "", handler)
}

func (f *fakeClient) QueueSubscribe(subject, _ string, handler messaging.MessageHandler) (messaging.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[subject] = handler
	return &fakeSubscription{subject: subject}, nil
}

func (f *fakeClient) Deliver(t *testing.T, pattern, routingKey string, data []byte) {
	t.Helper()

	f.mu.Lock()
	handler, ok := f.handlers[pattern]
	f.mu.Unlock()
	require.True(t, ok, "no subscription for %s", pattern)
	require.NoError(t, handler(context.Background(), &messaging.Message{Subject: routingKey, Data: data}))
}

func (f *fakeClient) Published() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedMessage(nil), f.published...)
}

func (f *fakeClient) Close() error      { return nil }
func (f *fakeClient) Drain() error      { return nil }
func (f *fakeClient) IsConnected() bool { return f.connected }

type fakeSubscription struct{ subject string }

func (s *fakeSubscription) Unsubscribe() error { return nil }
func (s *fakeSubscription) Subject() string    { return s.subject }
func (s *fakeSubscription) IsValid() bool      { return true }

// seenGuard marks every message as a duplicate.
type seenGuard struct{}

func (seenGuard) Seen(context.Context, string, int64) (bool, error) { return true, nil }
func (seenGuard) Close() error                                      { return nil }

func setupMessenger(t *testing.T) (*fakeClient, *Messenger) {
	t.Helper()
	return setupMessengerWithGuard(t, nil)
}

func setupMessengerWithGuard(t *testing.T, guard dedup.Guard) (*fakeClient, *Messenger) {
	t.Helper()

	mem := store.NewMemoryDatabase()
	events, err := database.NewEventDatabase(context.Background(), database.Collections{
		Details:   mem.Collection("details"),
		Changelog: mem.Collection("changelog"),
	}, nil)
	require.NoError(t, err)

	dispatcher := NewDispatcher()
	dispatcher.Register("events.details", binding.NewEventBinding(events, nil))

	validator, err := schema.NewComposite()
	require.NoError(t, err)

	client := newFakeClient()
	connect := func(context.Context) (messaging.Client, error) { return client, nil }

	m := New(Config{
		InboundPatterns: []string{"events.details.*"},
		Queue:           "dionysus_inbox",
		OutboundSubject: "gateway",
	}, connect, DefaultRetryPolicy(), validator, dispatcher, guard, nil)

	require.NoError(t, m.Start(context.Background()))
	return client, m
}

func TestMessenger_EndToEnd(t *testing.T) {
	client, _ := setupMessenger(t)

	create, err := json.Marshal(map[string]any{
		"msg_id":        1,
		"msg_intention": "CREATE",
		"userID":        "u1",
		"status":        0,
		"name":          "Demo",
		"start":         1000,
		"end":           2000,
		"venueIDs":      []string{"v1"},
		"attendance":    10,
	})
	require.NoError(t, err)

	client.Deliver(t, "events.details.*", "events.details.create", create)

	published := client.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "gateway", published[0].subject)

	var response models.ResponseEnvelope
	require.NoError(t, json.Unmarshal(published[0].data, &response))
	assert.Equal(t, int64(1), response.MsgID)
	assert.Equal(t, "CREATE", response.Intention)
	assert.Equal(t, "u1", response.UserID)
	assert.Equal(t, models.StatusSuccess, response.Status)
	require.Len(t, response.Result, 1)
	id, ok := response.Result[0].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)

	read, err := json.Marshal(map[string]any{
		"msg_id":        2,
		"msg_intention": "READ",
		"userID":        "u1",
		"status":        0,
		"id":            id,
	})
	require.NoError(t, err)

	client.Deliver(t, "events.details.*", "events.details.read", read)

	published = client.Published()
	require.Len(t, published, 2)
	require.NoError(t, json.Unmarshal(published[1].data, &response))
	assert.Equal(t, models.StatusSuccess, response.Status)
	require.Len(t, response.Result, 1)

	record, ok := response.Result[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Demo", record["name"])
}

func TestMessenger_SchemaGate(t *testing.T) {
	client, _ := setupMessenger(t)

	t.Run("missing msg_id produces zero publishes", func(t *testing.T) {
		client.Deliver(t, "events.details.*", "events.details.read",
			[]byte(`{"status": 0, "msg_intention": "READ"}`))
		assert.Empty(t, client.Published())
	})

	t.Run("unparseable body produces zero publishes", func(t *testing.T) {
		client.Deliver(t, "events.details.*", "events.details.read", []byte(`not json`))
		assert.Empty(t, client.Published())
	})

	t.Run("minimal read passes the gate", func(t *testing.T) {
		client.Deliver(t, "events.details.*", "events.details.read",
			[]byte(`{"msg_id": 4, "status": 0, "msg_intention": "READ"}`))
		assert.Len(t, client.Published(), 1)
	})
}

func TestMessenger_DuplicateDrop(t *testing.T) {
	client, _ := setupMessengerWithGuard(t, seenGuard{})

	client.Deliver(t, "events.details.*", "events.details.read",
		[]byte(`{"msg_id": 5, "status": 0, "msg_intention": "READ"}`))
	assert.Empty(t, client.Published(), "duplicates are dropped without a response")
}

func TestMessenger_ConnectRetries(t *testing.T) {
	client := newFakeClient()
	attempts := 0
	connect := func(context.Context) (messaging.Client, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("broker unreachable")
		}
		return client, nil
	}

	validator, err := schema.NewComposite()
	require.NoError(t, err)

	retry := RetryPolicy{
		Interval: 0,
		sleep:    func(context.Context, time.Duration) error { return nil },
	}

	m := New(Config{
		InboundPatterns: []string{"events.details.*"},
		Queue:           "dionysus_inbox",
		OutboundSubject: "gateway",
	}, connect, retry, validator, NewDispatcher(), nil, nil)

	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, 3, attempts)
	assert.True(t, m.Connected())
}
