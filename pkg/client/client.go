// Package client provides the resilient remote call primitive shared by the
// index builder and the enrichment pipeline. A call is retried indefinitely
// while the server signals a rate limit; any other failure propagates to the
// caller immediately.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/catalogtools/alttexter/pkg/logging"
)

// BackoffFunc computes the delay before the next attempt. attempt is 1-based
// and counts the attempts already made.
type BackoffFunc func(attempt int) time.Duration

// FixedBackoff returns a BackoffFunc that always waits d.
func FixedBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// Sleeper performs a context-aware delay. Tests inject a recording fake so
// backoff behavior is verified without real waiting.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepWithContext is the default Sleeper.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// callState is the explicit retry state machine. A call starts in
// stateAttempting and terminates in stateSucceeded or stateFailedTerminal;
// rate-limit responses route through stateBackoff back to stateAttempting.
type callState int

const (
	stateAttempting callState = iota
	stateBackoff
	stateSucceeded
	stateFailedTerminal
)

// Caller executes operations against one remote API with rate-limit retry.
type Caller struct {
	api      string
	classify Classifier
	backoff  BackoffFunc
	sleep    Sleeper
	logger   zerolog.Logger
}

// Option customizes a Caller.
type Option func(*Caller)

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleep Sleeper) Option {
	return func(c *Caller) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Caller) {
		c.logger = logger
	}
}

// New creates a Caller for the named API. classify maps the API's error
// shape onto an ErrorClass; backoff computes the rate-limit retry delay.
func New(api string, classify Classifier, backoff BackoffFunc, opts ...Option) *Caller {
	c := &Caller{
		api:      api,
		classify: classify,
		backoff:  backoff,
		sleep:    SleepWithContext,
		logger:   logging.NewLogger("remote-" + api),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes op through the retry state machine. On a rate-limit
// classification the call backs off and retries without an attempt bound:
// the server's rate-limit signal is trusted as the only transient condition,
// and context cancellation is the operator's stop lever. Any other error is
// returned unchanged after a single attempt.
func Do[T any](ctx context.Context, c *Caller, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var result T
	var lastErr error
	var lastClass ErrorClass

	attempt := 0
	state := stateAttempting

	for {
		switch state {
		case stateAttempting:
			attempt++
			res, err := op(ctx)
			if err == nil {
				result = res
				state = stateSucceeded
				break
			}
			lastErr = err
			lastClass = c.classify(err)
			if shouldRetry(lastClass) && ctx.Err() == nil {
				state = stateBackoff
			} else {
				state = stateFailedTerminal
			}

		case stateBackoff:
			delay := c.backoff(attempt)
			remoteAttemptsTotal.WithLabelValues(c.api, "retry_scheduled").Inc()
			remoteRetriesTotal.WithLabelValues(c.api).Inc()
			remoteBackoffSeconds.WithLabelValues(c.api).Observe(delay.Seconds())

			c.logger.Warn().
				Int("attempt", attempt).
				Dur("backoff", delay).
				Err(lastErr).
				Msg("Rate limited - retry scheduled")

			if err := c.sleep(ctx, delay); err != nil {
				return zero, fmt.Errorf("%w: %v", ErrInterrupted, err)
			}
			state = stateAttempting

		case stateSucceeded:
			remoteAttemptsTotal.WithLabelValues(c.api, "success").Inc()
			if attempt > 1 {
				c.logger.Info().
					Int("attempt", attempt).
					Msg("Call succeeded after rate-limit retry")
			}
			return result, nil

		case stateFailedTerminal:
			remoteAttemptsTotal.WithLabelValues(c.api, "terminal").Inc()
			remoteErrorsTotal.WithLabelValues(c.api, string(lastClass)).Inc()
			c.logger.Debug().
				Str("class", string(lastClass)).
				Err(lastErr).
				Msg("Call failed terminally")
			return zero, lastErr
		}
	}
}
