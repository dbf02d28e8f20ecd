package metrics

import (
	"io"
	"log/slog"
	"time"

	"donation-service/internal/config"
	"github.com/VictoriaMetrics/metrics"
)

// Setup starts pushing to cfg.URL when one is configured.
func Setup(cfg config.Metrics, logger *slog.Logger) {
	if cfg.URL == "" {
		return
	}

	err := metrics.InitPush(cfg.URL, config.Millis(cfg.IntervalMs), cfg.CommonLabels, true)
	if err != nil {
		logger.Error("Error initializing metrics push", "error", err)
	}
}

// Write exposes every registered metric in Prometheus text format.
func Write(w io.Writer) {
	metrics.WritePrometheus(w, true)
}

// Since records the elapsed milliseconds into the named histogram.
func Since(name string, start time.Time) {
	metrics.GetOrCreateHistogram(name).Update(float64(time.Since(start).Milliseconds()))
}
