package vision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for alt text generation.
var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alttexter_generations_total",
		Help: "Total generation outcomes (success or sentinel)",
	}, []string{"outcome"})

	generationDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "alttexter_generation_duration_seconds",
		Help:    "Wall time of one generation including rate-limit backoff",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)
