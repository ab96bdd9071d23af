// Package metrics exposes the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Message pipeline metrics
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dionysus_messages_received_total",
			Help: "Total number of messages received from the broker",
		},
		[]string{"routing_key"},
	)

	MessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dionysus_messages_dropped_total",
			Help: "Total number of messages dropped before dispatch",
		},
		[]string{"reason"},
	)

	MessagesDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dionysus_messages_dispatched_total",
			Help: "Total number of messages dispatched to a binding",
		},
		[]string{"binding", "intention"},
	)

	ResponsesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dionysus_responses_published_total",
			Help: "Total number of responses published to the gateway",
		},
		[]string{"status"},
	)

	HandleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dionysus_handle_duration_seconds",
			Help:    "Duration of message handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Broker connection metrics
	ConnectAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dionysus_broker_connect_attempts_total",
			Help: "Total number of broker connection attempts",
		},
	)

	// Changelog metrics
	ChangelogWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dionysus_changelog_write_errors_total",
			Help: "Total number of failed changelog writes",
		},
	)
)
