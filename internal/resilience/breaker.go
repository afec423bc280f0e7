// ABOUTME: Circuit breaker shielding the shared dedup store
// ABOUTME: Trips after consecutive failures so the pipeline degrades to its local cache

package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Defaults applied when a Config field is zero.
const (
	DefaultTripThreshold = 5
	DefaultCooldown      = 30 * time.Second
	DefaultProbeCalls    = 1
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker open")

// State of the breaker.
type State int

const (
	// Closed: calls pass through.
	Closed State = iota
	// Open: calls are rejected until the cooldown elapses.
	Open
	// Probing: a limited number of trial calls are allowed.
	Probing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Probing:
		return "probing"
	default:
		return "unknown"
	}
}

// Config tunes the breaker.
type Config struct {
	// TripThreshold is the consecutive-failure count that opens the
	// breaker. Zero uses DefaultTripThreshold.
	TripThreshold int

	// Cooldown is how long the breaker stays open before probing.
	// Zero uses DefaultCooldown.
	Cooldown time.Duration

	// ProbeCalls is how many trial calls the probing state admits.
	// Zero uses DefaultProbeCalls.
	ProbeCalls int

	// Name identifies the shielded resource in logs.
	Name string
}

// Stats is a point-in-time view of breaker counters.
type Stats struct {
	State       State
	Calls       int64
	Successes   int64
	Failures    int64
	Rejections  int64
	LastFailure time.Time
	Consecutive int
}

// Breaker implements the circuit breaker pattern around an unreliable
// collaborator.
type Breaker struct {
	mu     sync.RWMutex
	config Config

	state       State
	consecutive int
	lastFailure time.Time
	probesUsed  int

	calls      atomic.Int64
	successes  atomic.Int64
	failures   atomic.Int64
	rejections atomic.Int64
}

// NewBreaker creates a closed breaker with defaults applied.
func NewBreaker(cfg Config) *Breaker {
	if cfg.TripThreshold == 0 {
		cfg.TripThreshold = DefaultTripThreshold
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.ProbeCalls == 0 {
		cfg.ProbeCalls = DefaultProbeCalls
	}
	return &Breaker{config: cfg, state: Closed}
}

// Do runs fn through the breaker. While open it returns ErrOpen without
// invoking fn.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	b.calls.Add(1)

	if !b.admit() {
		b.rejections.Add(1)
		return ErrOpen
	}

	err := fn(ctx)
	b.observe(err == nil)
	return err
}

// State returns the current state, transitioning open→probing once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.RLock()
	state := b.state
	lastFailure := b.lastFailure
	b.mu.RUnlock()

	if state == Open && !lastFailure.IsZero() && time.Since(lastFailure) >= b.config.Cooldown {
		b.mu.Lock()
		if b.state == Open {
			b.state = Probing
			b.probesUsed = 0
		}
		state = b.state
		b.mu.Unlock()
	}
	return state
}

// Stats returns current counters.
func (b *Breaker) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{
		State:       b.state,
		Calls:       b.calls.Load(),
		Successes:   b.successes.Load(),
		Failures:    b.failures.Load(),
		Rejections:  b.rejections.Load(),
		LastFailure: b.lastFailure,
		Consecutive: b.consecutive,
	}
}

// Reset forces the breaker closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Closed
	b.consecutive = 0
	b.lastFailure = time.Time{}
	b.probesUsed = 0
}

func (b *Breaker) admit() bool {
	switch b.State() {
	case Closed:
		return true
	case Probing:
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.probesUsed < b.config.ProbeCalls {
			b.probesUsed++
			return true
		}
		return false
	default:
		return false
	}
}

func (b *Breaker) observe(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.successes.Add(1)
		b.consecutive = 0
		if b.state == Probing {
			b.state = Closed
			b.probesUsed = 0
		}
		return
	}

	b.failures.Add(1)
	b.consecutive++
	b.lastFailure = time.Now()

	switch b.state {
	case Closed:
		if b.consecutive >= b.config.TripThreshold {
			b.state = Open
		}
	case Probing:
		// A failed probe reopens immediately.
		b.state = Open
		b.probesUsed = 0
	}
}
