package http

import (
	"log/slog"
	"net/http"
)

// MetricsHandler exposes the Prometheus scrape endpoint
type MetricsHandler struct {
	prometheus http.Handler
	logger     *slog.Logger
}

// NewMetricsHandler creates a metrics handler backed by the Prometheus
// exporter bridge. A nil exporter disables the endpoint.
func NewMetricsHandler(prometheus http.Handler, logger *slog.Logger) *MetricsHandler {
	return &MetricsHandler{
		prometheus: prometheus,
		logger:     logger.With(slog.String("handler", "metrics")),
	}
}

// Metrics handles GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.Error(w, "metrics collection is disabled", http.StatusServiceUnavailable)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
