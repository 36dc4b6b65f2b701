package ratelimit

import (
	"context"
	"time"

	"github.com/catalogtools/alttexter/pkg/client"
)

// Pacer enforces the fixed delay between enrichment chunks. The delay
// throttles aggregate request rate independent of per-call retry backoff.
type Pacer struct {
	delay time.Duration
	sleep client.Sleeper
}

// NewPacer creates a Pacer with the given inter-chunk delay.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{
		delay: delay,
		sleep: client.SleepWithContext,
	}
}

// NewPacerWithSleeper creates a Pacer with an injected sleep function so
// tests can observe waits without real delays.
func NewPacerWithSleeper(delay time.Duration, sleep client.Sleeper) *Pacer {
	return &Pacer{
		delay: delay,
		sleep: sleep,
	}
}

// Delay returns the configured inter-chunk delay.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Wait blocks for the configured delay or until ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	chunkWaitsTotal.Inc()
	return p.sleep(ctx, p.delay)
}
