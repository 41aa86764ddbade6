package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

var errFlaky = errors.New("flaky")

func retryOnFlaky(err error) ErrorClassification {
	return ErrorClassification{Retryable: errors.Is(err, errFlaky), RecordFailure: true}
}

func TestExecuteRetryBudget(t *testing.T) {
	cases := []struct {
		name      string
		failFirst int
		failWith  error
		wantCalls int
		wantErr   error
	}{
		{name: "recovers within budget", failFirst: 2, failWith: errFlaky, wantCalls: 3},
		{name: "gives up after budget", failFirst: 5, failWith: errFlaky, wantCalls: 3, wantErr: errFlaky},
		{name: "permanent error is not retried", failFirst: 5, failWith: errors.New("bad shard"), wantCalls: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := NewExecutor(Config{
				RetryMaxAttempts:    3,
				RetryInitialBackoff: time.Millisecond,
				RetryMaxBackoff:     2 * time.Millisecond,
				RetryMultiplier:     2,
			})
			calls := 0
			err := exec.Execute(context.Background(), "fetch", func(context.Context) error {
				calls++
				if calls <= tc.failFirst {
					return tc.failWith
				}
				return nil
			}, retryOnFlaky)

			if calls != tc.wantCalls {
				t.Fatalf("expected %d calls, got %d", tc.wantCalls, calls)
			}
			switch {
			case tc.failFirst < tc.wantCalls && err != nil:
				t.Fatalf("expected success, got %v", err)
			case tc.wantErr != nil && !errors.Is(err, tc.wantErr):
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			case tc.failFirst >= tc.wantCalls && err == nil:
				t.Fatal("expected an error")
			}
		})
	}
}

func TestExecuteStopsOnCancelledContext(t *testing.T) {
	exec := NewExecutor(Config{RetryMaxAttempts: 3, RetryInitialBackoff: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := exec.Execute(ctx, "fetch", func(context.Context) error {
		calls++
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no calls, got %d", calls)
	}
}

func TestBreakerRejectsOnceOpen(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})
	fail := func(context.Context) error { return errFlaky }

	for i := 0; i < 2; i++ {
		if err := exec.Execute(context.Background(), "fetch", fail, nil); !errors.Is(err, errFlaky) {
			t.Fatalf("call %d: expected flaky error, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "fetch", func(context.Context) error {
		t.Fatal("operation ran while breaker was open")
		return nil
	}, nil)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open breaker, got %v", err)
	}

	// Breakers are per operation.
	if err := exec.Execute(context.Background(), "publish", func(context.Context) error { return nil }, nil); err != nil {
		t.Fatalf("expected other operation to pass, got %v", err)
	}
}

func TestBreakerIgnoresUnrecordedFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:   1,
		BreakerEnabled:     true,
		BreakerMinRequests: 1,
	})
	notFound := errors.New("not found")
	classifier := func(error) ErrorClassification { return ErrorClassification{} }

	for i := 0; i < 5; i++ {
		err := exec.Execute(context.Background(), "fetch", func(context.Context) error { return notFound }, classifier)
		if !errors.Is(err, notFound) {
			t.Fatalf("call %d: expected not found, got %v", i, err)
		}
	}
}

func TestJitterStaysWithinSpread(t *testing.T) {
	exec := NewExecutor(Config{RetryJitter: 0.5})
	for i := 0; i < 100; i++ {
		got := exec.jitter(100 * time.Millisecond)
		if got <= 50*time.Millisecond || got > 100*time.Millisecond {
			t.Fatalf("expected wait in (50ms, 100ms], got %v", got)
		}
	}

	plain := NewExecutor(Config{})
	if got := plain.jitter(100 * time.Millisecond); got != 100*time.Millisecond {
		t.Fatalf("expected unjittered wait, got %v", got)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := Config{RetryInitialBackoff: time.Second, RetryMultiplier: 0.5, RetryJitter: 1.5}.normalize()
	def := DefaultConfig()

	if cfg.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", def.RetryMaxAttempts, cfg.RetryMaxAttempts)
	}
	if cfg.RetryMaxBackoff != time.Second {
		t.Fatalf("expected max backoff raised to initial backoff, got %v", cfg.RetryMaxBackoff)
	}
	if cfg.RetryMultiplier != def.RetryMultiplier {
		t.Fatalf("expected multiplier %v, got %v", def.RetryMultiplier, cfg.RetryMultiplier)
	}
	if cfg.RetryJitter != 0 {
		t.Fatalf("expected out-of-range jitter to be disabled, got %v", cfg.RetryJitter)
	}
	if cfg.BreakerFailureRatio != def.BreakerFailureRatio || cfg.BreakerHalfOpenMaxCalls != def.BreakerHalfOpenMaxCalls {
		t.Fatalf("expected breaker defaults, got %+v", cfg)
	}
}

func TestDoReturnsValue(t *testing.T) {
	exec := NewExecutor(Config{RetryMaxAttempts: 2, RetryInitialBackoff: time.Millisecond, BreakerEnabled: false})

	calls := 0
	got, err := Do(context.Background(), exec, "fetch", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &HTTPStatusError{Operation: "fetch", StatusCode: 503, Status: "503 Service Unavailable"}
		}
		return "shard", nil
	}, ClassifyHTTP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "shard" || calls != 2 {
		t.Fatalf("expected value after retry, got %q in %d calls", got, calls)
	}
}

func TestStateListenerSeesTransitions(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		BreakerEnabled:          true,
		BreakerMinRequests:      1,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})
	var transitions []string
	exec.WithStateListener(func(_ string, from, to gobreaker.State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	_ = exec.Execute(context.Background(), "fetch", func(context.Context) error {
		return errors.New("boom")
	}, nil)

	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Fatalf("expected closed->open transition, got %v", transitions)
	}
}
