package enrich

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the enrichment pipeline.
var (
	rowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alttexter_enrich_rows_total",
		Help: "Rows processed by outcome (generated, kept_existing, skipped_no_filename, skipped_unresolved)",
	}, []string{"outcome"})

	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alttexter_enrich_batches_total",
		Help: "Completed batches appended to the output",
	})

	chunksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alttexter_enrich_chunks_total",
		Help: "Chunks processed across all batches",
	})
)
