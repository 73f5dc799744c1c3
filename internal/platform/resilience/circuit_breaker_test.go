package resilience

import (
	"errors"
	"testing"
	"time"
)

var errNotFound = errors.New("not found")

func newTestBreaker(threshold int, openTimeout time.Duration, halfOpen int, opts ...Option) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpen,
	}, opts...)
	now := time.Date(2026, 5, 9, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b, now := newTestBreaker(2, 5*time.Second, 1)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.Record(errors.New("timeout"))
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.Record(errors.New("timeout"))
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	*now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}

	b.Record(nil)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(1, time.Second, 1)

	b.Record(errors.New("502"))
	*now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe, got %v", err)
	}
	b.Record(errors.New("502"))

	snap := b.Snapshot()
	if snap.State != CircuitStateOpen {
		t.Fatalf("expected open after failed probe, got %s", snap.State)
	}
	if snap.OpenedAt == nil || !snap.OpenedAt.Equal(*now) {
		t.Fatalf("expected openedAt=%s, got %v", *now, snap.OpenedAt)
	}
}

func TestCircuitBreaker_ClassifierIgnoresExpectedErrors(t *testing.T) {
	b, _ := newTestBreaker(1, time.Second, 1, WithFailureClassifier(func(err error) bool {
		return err != nil && !errors.Is(err, errNotFound)
	}))

	err := b.Execute(func() error { return errNotFound })
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected the call error back, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected a missing match file to leave the breaker closed, got %s", state)
	}
}

func TestCircuitBreaker_StateChangeHook(t *testing.T) {
	var got []string
	b, now := newTestBreaker(1, time.Second, 1, WithStateChangeHook(func(from, to CircuitState) {
		got = append(got, string(from)+">"+string(to))
	}))

	_ = b.Execute(func() error { return errors.New("timeout") })
	*now = now.Add(2 * time.Second)
	_ = b.Execute(func() error { return nil })

	want := []string{"closed>open", "open>half_open", "half_open>closed"}
	if len(got) != len(want) {
		t.Fatalf("unexpected transitions: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transition %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCircuitBreaker_DisabledAlwaysAllows(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	for range 3 {
		if err := b.Execute(func() error { return errors.New("boom") }); errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("disabled breaker rejected a call")
		}
	}
	if state := b.State(); state != CircuitStateDisabled {
		t.Fatalf("expected disabled state, got %s", state)
	}
}

func TestCircuitBreakerConfig_NormalizeFillsDefaults(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true}.Normalize()
	want := DefaultCircuitBreakerConfig()
	if got != want {
		t.Fatalf("unexpected normalized config: got=%+v want=%+v", got, want)
	}
}
