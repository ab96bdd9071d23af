package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter constructs a ServeMux with the debug routes registered.
func NewRouter(h *DebugHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)
	mux.HandleFunc("/debug/events", h.Events)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
