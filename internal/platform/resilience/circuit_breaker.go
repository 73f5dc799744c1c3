package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
	CircuitStateDisabled CircuitState = "disabled"
)

// Snapshot is a point-in-time view of a breaker, exposed on /healthz.
type Snapshot struct {
	State               CircuitState `json:"state"`
	ConsecutiveFailures int          `json:"consecutiveFailures"`
	OpenedAt            *time.Time   `json:"openedAt,omitempty"`
}

type Option func(*CircuitBreaker)

// WithFailureClassifier decides which errors count against the breaker.
// By default every non-nil error does.
func WithFailureClassifier(fn func(error) bool) Option {
	return func(b *CircuitBreaker) {
		if fn != nil {
			b.isFailure = fn
		}
	}
}

// WithStateChangeHook is called outside the breaker lock after each transition.
func WithStateChangeHook(fn func(from, to CircuitState)) Option {
	return func(b *CircuitBreaker) { b.onChange = fn }
}

// CircuitBreaker opens after FailureThreshold consecutive failures, rejects
// calls for OpenTimeout, then lets HalfOpenMaxReq probes decide whether to
// close again. A disabled breaker lets every call through.
type CircuitBreaker struct {
	cfg       CircuitBreakerConfig
	isFailure func(error) bool
	onChange  func(from, to CircuitState)
	now       func() time.Time

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	inFlight int
	passed   int
}

type transition struct{ from, to CircuitState }

func NewCircuitBreaker(cfg CircuitBreakerConfig, opts ...Option) *CircuitBreaker {
	b := &CircuitBreaker{
		cfg:       cfg.Normalize(),
		isFailure: func(err error) bool { return err != nil },
		now:       time.Now,
		state:     CircuitStateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs fn when the breaker allows it and records the outcome.
func (b *CircuitBreaker) Execute(fn func() error) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	b.Record(err)
	return err
}

func (b *CircuitBreaker) Allow() error {
	if !b.cfg.Enabled {
		return nil
	}
	b.mu.Lock()
	changed, err := b.allowLocked()
	b.mu.Unlock()
	b.notify(changed)
	return err
}

func (b *CircuitBreaker) allowLocked() (*transition, error) {
	var changed *transition
	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return nil, ErrCircuitOpen
		}
		changed = b.moveLocked(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.inFlight >= b.cfg.HalfOpenMaxReq {
			return changed, ErrCircuitOpen
		}
		b.inFlight++
	}
	return changed, nil
}

// Record reports the outcome of an allowed call.
func (b *CircuitBreaker) Record(err error) {
	if !b.cfg.Enabled {
		return
	}
	failed := b.isFailure(err)

	b.mu.Lock()
	var changed *transition
	switch {
	case b.state == CircuitStateHalfOpen && failed:
		b.failures++
		changed = b.moveLocked(CircuitStateOpen)
	case b.state == CircuitStateHalfOpen:
		b.inFlight = max(b.inFlight-1, 0)
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq && b.inFlight == 0 {
			changed = b.moveLocked(CircuitStateClosed)
		}
	case b.state == CircuitStateOpen && failed:
		b.openedAt = b.now()
	case failed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			changed = b.moveLocked(CircuitStateOpen)
		}
	case b.state == CircuitStateClosed:
		b.failures = 0
	}
	b.mu.Unlock()
	b.notify(changed)
}

func (b *CircuitBreaker) State() CircuitState {
	return b.Snapshot().State
}

// Snapshot reports an open breaker whose timeout has elapsed as half open,
// since the next call will be let through as a probe.
func (b *CircuitBreaker) Snapshot() Snapshot {
	if !b.cfg.Enabled {
		return Snapshot{State: CircuitStateDisabled}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	out := Snapshot{State: b.state, ConsecutiveFailures: b.failures}
	if b.state == CircuitStateOpen {
		openedAt := b.openedAt
		out.OpenedAt = &openedAt
		if b.now().Sub(openedAt) >= b.cfg.OpenTimeout {
			out.State = CircuitStateHalfOpen
		}
	}
	return out
}

func (b *CircuitBreaker) moveLocked(to CircuitState) *transition {
	from := b.state
	b.state = to
	b.inFlight = 0
	b.passed = 0
	switch to {
	case CircuitStateOpen:
		b.openedAt = b.now()
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	}
	return &transition{from: from, to: to}
}

func (b *CircuitBreaker) notify(t *transition) {
	if t != nil && b.onChange != nil {
		b.onChange(t.from, t.to)
	}
}
