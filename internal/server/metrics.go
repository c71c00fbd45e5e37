package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/desertthunder/playgraph/internal/metrics"
)

// MetricsHandler serves the Prometheus registry at /metrics and a liveness check at /healthz.
type MetricsHandler struct {
	metrics http.Handler
	started time.Time
}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{metrics: metrics.Handler(), started: time.Now()}
}

func (h *MetricsHandler) Routes() []string {
	return []string{"GET /metrics", "GET /healthz"}
}

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/metrics" {
		h.metrics.ServeHTTP(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
