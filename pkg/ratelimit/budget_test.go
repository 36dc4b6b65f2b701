package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestBudget_PerCallDelay(t *testing.T) {
	tests := []struct {
		name   string
		budget Budget
		want   time.Duration
	}{
		{
			name:   "default-ish budget",
			budget: Budget{TokensPerMinute: 30000, TokensPerCall: 1500},
			want:   3 * time.Second,
		},
		{
			name:   "tight budget",
			budget: Budget{TokensPerMinute: 6000, TokensPerCall: 1500},
			want:   15 * time.Second,
		},
		{
			name:   "generous budget",
			budget: Budget{TokensPerMinute: 90000, TokensPerCall: 1500},
			want:   1 * time.Second,
		},
		{
			name:   "zero budget disables delay",
			budget: Budget{TokensPerMinute: 0, TokensPerCall: 1500},
			want:   0,
		},
		{
			name:   "zero call cost disables delay",
			budget: Budget{TokensPerMinute: 30000, TokensPerCall: 0},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.budget.PerCallDelay(); got != tt.want {
				t.Errorf("PerCallDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewBudget_Defaults(t *testing.T) {
	b := NewBudget(0, 0)

	if b.TokensPerMinute != DefaultTokensPerMinute {
		t.Errorf("TokensPerMinute = %d, want %d", b.TokensPerMinute, DefaultTokensPerMinute)
	}
	if b.TokensPerCall != DefaultTokensPerCall {
		t.Errorf("TokensPerCall = %d, want %d", b.TokensPerCall, DefaultTokensPerCall)
	}
	if b.PerCallDelay() != 3*time.Second {
		t.Errorf("PerCallDelay() = %v, want 3s", b.PerCallDelay())
	}
}

func TestPacer_Wait(t *testing.T) {
	var slept []time.Duration
	pacer := NewPacerWithSleeper(5*time.Second, func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	})

	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(slept) != 1 || slept[0] != 5*time.Second {
		t.Errorf("slept = %v, want [5s]", slept)
	}
}

func TestPacer_ZeroDelaySkipsSleep(t *testing.T) {
	called := false
	pacer := NewPacerWithSleeper(0, func(ctx context.Context, d time.Duration) error {
		called = true
		return nil
	})

	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if called {
		t.Error("Expected no sleep for zero delay")
	}
}

func TestPacer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pacer := NewPacer(time.Millisecond)
	if err := pacer.Wait(ctx); err == nil {
		t.Error("Expected context error, got nil")
	}
}
