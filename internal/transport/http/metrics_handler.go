package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "loteriadash/internal/errors"
	ws "loteriadash/internal/websocket"
)

// MetricsHandler exposes the Prometheus registry and the websocket hub stats
type MetricsHandler struct {
	prometheus http.Handler
	hub        *ws.Hub
}

// NewMetricsHandler creates a new metrics handler. prometheus may be nil when
// metrics are disabled.
func NewMetricsHandler(prometheus http.Handler, hub *ws.Hub) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus, hub: hub}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		apierrors.WriteError(w, apierrors.NewWithDetails(
			http.StatusServiceUnavailable,
			"METRICS_DISABLED",
			"Metrics are disabled",
			map[string]interface{}{"setting": "LOTERIA_TELEMETRY_ENABLE_METRICS"},
		))
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// WebSocketStats handles GET /api/ws/stats
func (h *MetricsHandler) WebSocketStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.hub.Stats())
}
