package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("remote store unreachable")

// recordSleep captures requested waits without blocking.
type recordSleep struct {
	waits []time.Duration
}

func (r *recordSleep) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func TestDoRecoversAfterTwoFailures(t *testing.T) {
	delay := 20 * time.Millisecond
	p := New(3, delay)

	var calls []time.Time
	result, err := Do(context.Background(), p, func(ctx context.Context) (string, error) {
		calls = append(calls, time.Now())
		if len(calls) < 3 {
			return "", errTransient
		}
		return "snapshot", nil
	})

	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if result != "snapshot" {
		t.Errorf("result = %q", result)
	}
	if len(calls) != 3 {
		t.Fatalf("invocations = %d, want 3", len(calls))
	}
	if gap := calls[1].Sub(calls[0]); gap < delay {
		t.Errorf("second attempt after %v, want >= %v", gap, delay)
	}
	if gap := calls[2].Sub(calls[1]); gap < 2*delay {
		t.Errorf("third attempt after %v, want >= %v", gap, 2*delay)
	}
}

func TestDoExhaustion(t *testing.T) {
	rec := &recordSleep{}
	p := New(2, 100*time.Millisecond, WithSleep(rec.sleep))

	calls := 0
	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		return 0, errTransient
	})

	if calls != 3 {
		t.Errorf("invocations = %d, want 3", calls)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, errTransient) {
		t.Error("exhausted error should unwrap to the last failure")
	}

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(rec.waits) != len(want) {
		t.Fatalf("waits = %v, want %v", rec.waits, want)
	}
	for i := range want {
		if rec.waits[i] != want[i] {
			t.Errorf("wait %d = %v, want %v", i, rec.waits[i], want[i])
		}
	}
}

func TestDoFirstTrySuccessDoesNotWait(t *testing.T) {
	rec := &recordSleep{}
	p := New(3, time.Second, WithSleep(rec.sleep))

	calls := 0
	if _, err := Do(context.Background(), p, func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	}); err != nil {
		t.Fatal(err)
	}
	if calls != 1 || len(rec.waits) != 0 {
		t.Errorf("calls = %d, waits = %v", calls, rec.waits)
	}
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New(5, time.Hour)

	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, p, func(ctx context.Context) (int, error) {
			return 0, errTransient
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestNewDefaults(t *testing.T) {
	p := New(-1, 0)
	if p.Count != DefaultCount || p.Delay != DefaultDelay {
		t.Errorf("defaults = %d, %v", p.Count, p.Delay)
	}
	if got := p.Backoff(2); got != 4*DefaultDelay {
		t.Errorf("Backoff(2) = %v", got)
	}
}
