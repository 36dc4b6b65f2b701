package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// indexHits tracks successful row resolutions by match kind.
	indexHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alttexter_index_hits_total",
			Help: "Total index resolutions by match kind",
		},
		[]string{"match"}, // "exact", "suffix_stripped"
	)

	// indexMisses tracks row resolutions that found no entry.
	indexMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alttexter_index_misses_total",
			Help: "Total index resolutions with no matching entry",
		},
	)

	// indexEntries tracks the current number of entries in the store.
	indexEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alttexter_index_entries",
			Help: "Current number of entries in the index store",
		},
	)

	// indexPersistsTotal tracks completed persists of the store.
	indexPersistsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alttexter_index_persists_total",
			Help: "Total times the index store was persisted to disk",
		},
	)
)
