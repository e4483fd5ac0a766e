// Package clock provides a monotonic time abstraction so that
// interval-driven code (the periodic timer) can be exercised in tests
// without waiting for real intervals to elapse. The rate limiter does
// not use it; it paces against real time.
package clock

import "time"

// Clock is a source of monotonic time and repeating ticks.
//
// Implementations must guarantee monotonicity: for any two successive
// calls A and B on the same Clock, B.Now() must not be before A.Now().
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a Ticker that fires every d until Stop is called.
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker that callers need, abstracted so
// tests can drive ticks deterministically.
type Ticker interface {
	// Chan returns the channel on which ticks are delivered.
	Chan() <-chan time.Time

	// Stop releases the ticker's resources. It does not close Chan().
	Stop()
}

// System is a Clock backed by the real wall clock. It is stateless and
// safe to share across goroutines.
type System struct{}

// New returns the system clock.
func New() System {
	return System{}
}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// NewTicker wraps time.NewTicker.
func (System) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) Chan() <-chan time.Time {
	return s.t.C
}

func (s systemTicker) Stop() {
	s.t.Stop()
}
