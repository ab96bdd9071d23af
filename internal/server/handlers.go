// Package server exposes the minimal HTTP debug surface: liveness and
// readiness probes, Prometheus metrics, and a debug listing of stored
// events. All request traffic travels over the broker, not HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/UStAEnts/uems-event-micro-dionysus/internal/database"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/models"
	"github.com/UStAEnts/uems-event-micro-dionysus/internal/store"
)

// Readiness reports whether the broker side of the service is up.
type Readiness interface {
	Connected() bool
}

// DebugHandler serves the health and debug endpoints.
type DebugHandler struct {
	db        store.Database
	events    *database.EventDatabase
	messenger Readiness
}

// NewDebugHandler wires the debug surface.
func NewDebugHandler(db store.Database, events *database.EventDatabase, messenger Readiness) *DebugHandler {
	return &DebugHandler{db: db, events: events, messenger: messenger}
}

// Health handles GET /healthz for liveness probes.
func (h *DebugHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Ready handles GET /readyz; the service is ready once the store answers
// pings and the broker connection is live.
func (h *DebugHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]string{"store": "ok", "broker": "ok"}
	code := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		status["store"] = "unreachable"
		code = http.StatusServiceUnavailable
	}
	if !h.messenger.Connected() {
		status["broker"] = "disconnected"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

// Events handles GET /debug/events, dumping every stored event.
func (h *DebugHandler) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	events, err := h.events.Query(ctx, &models.ReadEventRequest{})
	if err != nil {
		http.Error(w, "failed to list events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}
