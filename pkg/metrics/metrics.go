// Package metrics provides the centralized Prometheus metrics reference for
// alttexter. All metrics are defined in their respective packages (client,
// index, shopify, ratelimit, vision, enrich) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by alttexter.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Remote Call Metrics (pkg/client):
//   - alttexter_remote_attempts_total{api, outcome} (Counter): Attempts by API and outcome (success, terminal, retry_scheduled)
//   - alttexter_remote_retries_total{api} (Counter): Rate-limit retries by API
//   - alttexter_remote_backoff_seconds{api} (Histogram): Backoff duration per retry by API
//   - alttexter_remote_errors_total{api, class} (Counter): Terminal errors by API and class (client, server, rate_limit, network)
//
// Index Metrics (pkg/index):
//   - alttexter_index_hits_total{match} (Counter): Lookups resolved (exact, suffix_stripped)
//   - alttexter_index_misses_total (Counter): Lookups that resolved nothing
//   - alttexter_index_entries (Gauge): Entries currently in the index
//   - alttexter_index_persists_total (Counter): Index persists to disk
//
// Sweep Metrics (pkg/shopify):
//   - alttexter_sweep_pages_total{category} (Counter): Pages fetched per category
//   - alttexter_sweep_items_indexed_total{category} (Counter): Items merged per category
//   - alttexter_sweep_items_skipped_total{category} (Counter): Items skipped per category
//   - alttexter_sweep_duration_seconds{category} (Histogram): Full sweep duration
//
// Rate Governance Metrics (pkg/ratelimit):
//   - alttexter_token_budget_per_minute (Gauge): Configured generation token budget
//   - alttexter_rate_limit_delay_seconds (Gauge): Derived per-call rate-limit delay
//   - alttexter_chunk_waits_total (Counter): Inter-chunk delays enforced
//
// Generation Metrics (pkg/vision):
//   - alttexter_generations_total{outcome} (Counter): Generation outcomes (success, sentinel)
//   - alttexter_generation_duration_seconds (Histogram): Generation wall time including backoff
//
// Enrichment Metrics (pkg/enrich):
//   - alttexter_enrich_rows_total{outcome} (Counter): Rows by outcome (generated, kept_existing, skipped_no_filename, skipped_unresolved)
//   - alttexter_enrich_batches_total (Counter): Batches appended to the output
//   - alttexter_enrich_chunks_total (Counter): Chunks processed
//
// Example Prometheus Queries:
//
//   # Generation Failure Rate
//   rate(alttexter_generations_total{outcome="sentinel"}[5m]) /
//   rate(alttexter_generations_total[5m])
//
//   # Index Hit Rate
//   sum(rate(alttexter_index_hits_total[5m])) /
//   (sum(rate(alttexter_index_hits_total[5m])) + rate(alttexter_index_misses_total[5m]))
//
//   # Rate-Limit Pressure by API
//   rate(alttexter_remote_retries_total[5m])
//
//   # P95 Generation Latency
//   histogram_quantile(0.95, rate(alttexter_generation_duration_seconds_bucket[5m]))
