// Package timer provides a periodic timer built on the clock
// abstraction, generalized from a cron-style job scheduler to a single
// fixed-interval callback: invoke a callback every interval, correct
// for drift instead of skipping ticks, and support a non-interrupting
// stop that lets an in-flight invocation finish.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockgen-io/blockgen/internal/clock"
)

// Callback is invoked on every tick with the scheduled tick time (not
// necessarily the wall-clock time the callback actually runs at) and
// a context that is canceled if the timer is stopped with
// interrupt=true while the callback is still running. A callback that
// has no cancellation point of its own is free to ignore ctx; it will
// still run to completion, just as under a non-interrupting stop.
type Callback func(ctx context.Context, tickTime time.Time)

// Timer runs a Callback on its own worker goroutine every interval,
// from the first tick until Stop is called.
type Timer struct {
	clock    clock.Clock
	interval time.Duration
	callback Callback
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	cancel  context.CancelFunc
}

// New creates a Timer that will invoke cb every interval once Start is
// called. interval must be positive; callers validate this at a
// higher level (blockgen.Config) since the zero value here has no
// sensible default.
func New(clk clock.Clock, interval time.Duration, cb Callback, logger zerolog.Logger) *Timer {
	return &Timer{
		clock:    clk,
		interval: interval,
		callback: cb,
		logger:   logger.With().Str("component", "timer").Logger(),
	}
}

// Start launches the worker goroutine. Start must not be called more
// than once on the same Timer.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.run(ctx, cancel, t.stopCh, t.doneCh)
}

// run wakes up on every tick the underlying clock delivers and then
// computes, from the clock's actual elapsed time, how many interval
// boundaries have passed since startTime. It fires the callback once
// for every boundary in order, not just once per wakeup.
//
// This matters because clock.Ticker (like time.Ticker) is documented
// to coalesce or drop ticks a slow receiver can't keep up with — at
// most one tick is ever buffered on its channel. If the callback
// blocks across more than one interval (spec.md §4.6 step 6: roll can
// block on a full queue), a naive "one wakeup, one callback" loop
// would silently skip the boundaries the ticker dropped. Recomputing
// the target boundary from the clock on every wakeup instead means a
// blocked callback still gets invoked once per elapsed interval as
// soon as the worker is free, which is spec.md §4.4's "never falls
// behind by skipping; it catches up by firing immediately".
func (t *Timer) run(ctx context.Context, cancel context.CancelFunc, stopCh, doneCh chan struct{}) {
	defer cancel()
	defer close(doneCh)

	startTime := t.clock.Now()
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	var tickCount int64
	for {
		select {
		case <-ticker.Chan():
			// target is recomputed on every iteration, not just once
			// per wakeup: if the callback itself takes long enough that
			// further interval boundaries elapse while it runs, this
			// keeps firing without waiting for another ticker wakeup
			// that may never come (the ticker channel only ever holds
			// one pending tick).
			for tickCount < int64(t.clock.Now().Sub(startTime)/t.interval) {
				tickCount++
				scheduled := startTime.Add(time.Duration(tickCount) * t.interval)
				t.invoke(ctx, scheduled)
				select {
				case <-stopCh:
					return
				default:
				}
			}
		case <-stopCh:
			return
		}
	}
}

func (t *Timer) invoke(ctx context.Context, scheduled time.Time) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().Interface("panic", r).Msg("tick callback panicked")
		}
	}()
	t.callback(ctx, scheduled)
}

// Stop signals the worker to exit and waits for it to do so.
//
// When interrupt is false (the mode blockgen uses), any tick already
// in progress runs to completion before the worker exits — the run
// loop above only checks stopCh between callback invocations, so this
// is the natural behavior, not a special case. When interrupt is
// true, the callback's context is canceled as well: a callback that
// checks ctx (as Generator.roll does around its blocking queue
// insert) can abandon its in-flight work early instead of running to
// completion. Stop still waits for the worker goroutine to actually
// exit either way, since a callback with no cancellation point simply
// keeps running.
func (t *Timer) Stop(interrupt bool) {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	stopCh, doneCh, cancel := t.stopCh, t.doneCh, t.cancel
	t.mu.Unlock()

	close(stopCh)
	if interrupt {
		cancel()
	}
	<-doneCh
}
