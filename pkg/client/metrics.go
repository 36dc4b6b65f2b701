package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for remote call attempts. Every attempt emits exactly
// one diagnostic event: success, terminal failure, or retry-scheduled.
var (
	remoteAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alttexter_remote_attempts_total",
		Help: "Total remote call attempts by API and outcome",
	}, []string{"api", "outcome"}) // "success", "terminal", "retry_scheduled"

	remoteRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alttexter_remote_retries_total",
		Help: "Total rate-limit retries by API",
	}, []string{"api"})

	remoteBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alttexter_remote_backoff_seconds",
		Help:    "Backoff duration before rate-limit retries by API",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"api"})

	remoteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alttexter_remote_errors_total",
		Help: "Total terminal remote call errors by API and class",
	}, []string{"api", "class"})
)
