package shopify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for index sweeps.
var (
	sweepPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alttexter_sweep_pages_total",
		Help: "Total pages fetched by sweep category",
	}, []string{"category"})

	sweepItemsIndexedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alttexter_sweep_items_indexed_total",
		Help: "Total items merged into the index by sweep category",
	}, []string{"category"})

	sweepItemsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alttexter_sweep_items_skipped_total",
		Help: "Total items skipped for missing or unusable URLs by sweep category",
	}, []string{"category"})

	sweepDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alttexter_sweep_duration_seconds",
		Help:    "Full sweep duration by category",
		Buckets: []float64{1, 5, 15, 60, 300, 900},
	}, []string{"category"})
)
