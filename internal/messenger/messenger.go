// Package messenger owns the broker side of the service: it connects with a
// configurable retry policy, binds the inbound request topics into a shared
// queue group, gates every message through the schema validator, and
// publishes non-nil dispatch results to the gateway subject.
package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/dedup"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/messaging"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/metrics"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
)

// Validator gates inbound payloads before they reach a binding.
type Validator interface {
	Validate(raw []byte) bool
}

// ConnectFunc establishes the broker connection. Injected so tests can hand
// the messenger a fake client.
type ConnectFunc func(ctx context.Context) (messaging.Client, error)

// Config carries the topology the messenger asserts on startup.
type Config struct {
	// InboundPatterns are the routing-key patterns bound into the queue.
	InboundPatterns []string

	// Queue is the shared queue group name. Multiple replicas consuming
	// from the same group load-balance rather than broadcast.
	Queue string

	// OutboundSubject receives every response for the gateway to fan out.
	OutboundSubject string
}

// Messenger drives the request/response loop against the broker.
type Messenger struct {
	cfg        Config
	connect    ConnectFunc
	retry      RetryPolicy
	validator  Validator
	dispatcher *Dispatcher
	guard      dedup.Guard
	logger     *slog.Logger

	client messaging.Client
	subs   []messaging.Subscription
}

// New assembles a messenger. A nil guard disables duplicate suppression.
func New(cfg Config, connect ConnectFunc, retry RetryPolicy, validator Validator, dispatcher *Dispatcher, guard dedup.Guard, logger *slog.Logger) *Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	if guard == nil {
		guard = &dedup.NoOpGuard{}
	}
	return &Messenger{
		cfg:        cfg,
		connect:    connect,
		retry:      retry,
		validator:  validator,
		dispatcher: dispatcher,
		guard:      guard,
		logger:     logger.With(slog.String("component", "messenger")),
	}
}

// Start connects to the broker, retrying per the policy, then binds every
// configured pattern into the shared queue group.
func (m *Messenger) Start(ctx context.Context) error {
	err := m.retry.Do(ctx, func() error {
		metrics.ConnectAttempts.Inc()
		client, err := m.connect(ctx)
		if err != nil {
			m.logger.Warn("broker connection failed, retrying", slog.String("error", err.Error()))
			return err
		}
		m.client = client
		return nil
	})
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}

	for _, pattern := range m.cfg.InboundPatterns {
		sub, err := m.client.QueueSubscribe(pattern, m.cfg.Queue, m.handle)
		if err != nil {
			return fmt.Errorf("binding %s: %w", pattern, err)
		}
		m.subs = append(m.subs, sub)
		m.logger.Info("bound inbound pattern",
			slog.String("pattern", pattern),
			slog.String("queue", m.cfg.Queue))
	}

	m.logger.Info("messenger started", slog.String("outbound", m.cfg.OutboundSubject))
	return nil
}

// handle processes one inbound message end to end. Malformed or replayed
// messages are dropped without a response; binding errors never reach here.
func (m *Messenger) handle(ctx context.Context, msg *messaging.Message) error {
	start := time.Now()
	defer func() {
		metrics.HandleDuration.Observe(time.Since(start).Seconds())
	}()

	metrics.MessagesReceived.WithLabelValues(msg.Subject).Inc()

	if !m.validator.Validate(msg.Data) {
		metrics.MessagesDropped.WithLabelValues("schema").Inc()
		m.logger.Warn("message dropped: not schema compliant", slog.String("routing_key", msg.Subject))
		return nil
	}

	env, err := models.ParseEnvelope(msg.Data)
	if err != nil {
		metrics.MessagesDropped.WithLabelValues("parse").Inc()
		m.logger.Warn("message dropped: undecodable envelope", slog.String("routing_key", msg.Subject))
		return nil
	}

	// Propagate the caller's request ID or mint one for log correlation.
	requestID := env.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	logger := m.logger.With(
		slog.String("request_id", requestID),
		slog.String("routing_key", msg.Subject),
		slog.Int64("msg_id", env.MsgID))

	seen, err := m.guard.Seen(ctx, msg.Subject, env.MsgID)
	if err != nil {
		// Fail open: a broken guard must not block the request path.
		logger.Warn("dedup check failed, handling anyway", slog.String("error", err.Error()))
	} else if seen {
		metrics.MessagesDropped.WithLabelValues("duplicate").Inc()
		logger.Info("message dropped: duplicate")
		return nil
	}

	metrics.MessagesDispatched.WithLabelValues(msg.Subject, env.Intention).Inc()
	logger.Debug("dispatching request", slog.String("intention", env.Intention))

	response := m.dispatcher.Dispatch(ctx, msg.Subject, msg.Data)
	if response == nil {
		return nil
	}

	return m.publish(ctx, response)
}

func (m *Messenger) publish(ctx context.Context, response any) error {
	data, err := json.Marshal(response)
	if err != nil {
		m.logger.Error("failed to serialize response", slog.String("error", err.Error()))
		return err
	}

	if err := m.client.Publish(ctx, m.cfg.OutboundSubject, data); err != nil {
		m.logger.Error("failed to publish response", slog.String("error", err.Error()))
		return err
	}

	metrics.ResponsesPublished.WithLabelValues(responseStatus(response)).Inc()
	return nil
}

func responseStatus(response any) string {
	switch r := response.(type) {
	case *models.ResponseEnvelope:
		return strconv.Itoa(r.Status)
	case *models.DiscoverResponse:
		return strconv.Itoa(r.Status)
	case *models.DiscoverDeleteResponse:
		return strconv.Itoa(r.Status)
	default:
		return "unknown"
	}
}

// Connected reports whether the broker connection is live.
func (m *Messenger) Connected() bool {
	return m.client != nil && m.client.IsConnected()
}

// Stop drains the connection and releases every subscription.
func (m *Messenger) Stop() error {
	if m.client == nil {
		return nil
	}

	for _, sub := range m.subs {
		if err := sub.Unsubscribe(); err != nil {
			m.logger.Warn("failed to unsubscribe", slog.String("subject", sub.Subject()), slog.String("error", err.Error()))
		}
	}
	m.subs = nil

	if err := m.client.Drain(); err != nil {
		m.logger.Warn("drain failed, closing", slog.String("error", err.Error()))
	}
	return m.client.Close()
}
