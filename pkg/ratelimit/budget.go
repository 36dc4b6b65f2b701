// Package ratelimit implements the token budget that paces generation calls
// and the fixed delay enforced between enrichment chunks. The budget does not
// gate requests up front; it sizes the backoff applied when the generation
// API signals a rate limit, so the steady-state request rate converges on the
// configured tokens-per-minute allowance.
package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for rate governance.
var (
	tokenBudgetPerMinute = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alttexter_token_budget_per_minute",
		Help: "Configured generation token budget per minute",
	})

	perCallDelaySeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alttexter_rate_limit_delay_seconds",
		Help: "Derived per-call delay applied on generation rate limits",
	})

	chunkWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alttexter_chunk_waits_total",
		Help: "Total inter-chunk delays enforced by the pacer",
	})
)

// Default budget values, matching a conservative vision-model allowance.
const (
	// DefaultTokensPerMinute is the assumed generation API token budget.
	DefaultTokensPerMinute = 30000

	// DefaultTokensPerCall is the estimated token cost of one generation
	// call (prompt + image + completion).
	DefaultTokensPerCall = 1500
)

// Budget derives a rate-limit backoff delay from a tokens-per-minute
// allowance and an estimated per-call token cost.
type Budget struct {
	// TokensPerMinute is the API's token budget per minute.
	TokensPerMinute int

	// TokensPerCall is the estimated token cost of a single call.
	TokensPerCall int
}

// NewBudget creates a Budget, substituting defaults for non-positive values,
// and publishes the configured budget to metrics.
func NewBudget(tokensPerMinute, tokensPerCall int) Budget {
	if tokensPerMinute <= 0 {
		tokensPerMinute = DefaultTokensPerMinute
	}
	if tokensPerCall <= 0 {
		tokensPerCall = DefaultTokensPerCall
	}
	b := Budget{
		TokensPerMinute: tokensPerMinute,
		TokensPerCall:   tokensPerCall,
	}
	tokenBudgetPerMinute.Set(float64(b.TokensPerMinute))
	perCallDelaySeconds.Set(b.PerCallDelay().Seconds())
	return b
}

// PerCallDelay returns the wait applied before retrying a rate-limited
// generation call: the fraction of a minute one call's tokens consume.
func (b Budget) PerCallDelay() time.Duration {
	if b.TokensPerMinute <= 0 || b.TokensPerCall <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) * float64(b.TokensPerCall) / float64(b.TokensPerMinute))
}
