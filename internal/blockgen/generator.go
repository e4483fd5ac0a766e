// Package blockgen implements a streaming block generator: producers
// add items one at a time, a periodic timer seals whatever has
// accumulated into a Block, and a drain worker hands sealed blocks to
// a Listener at its own pace. See spec.md for the full component
// design this package implements.
package blockgen

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/blockgen-io/blockgen/internal/timer"
)

// drainPollInterval is how often the drain worker rechecks the
// generator's state while the queue is empty (spec.md §4.5).
const drainPollInterval = 10 * time.Millisecond

// Generator accumulates items of type T into blocks on a fixed
// interval and hands sealed blocks to a Listener through a bounded
// queue. A Generator is created with New, moved to Active with
// Start, and wound down with Stop; it is not reusable afterward
// (spec.md §3).
type Generator[T any] struct {
	receiverID int64
	cfg        Config
	listener   Listener[T]
	logger     zerolog.Logger

	limiter *rateLimiter
	queue   *blockQueue[T]
	timer   *timer.Timer

	mu           sync.Mutex
	state        State
	buffer       []T
	lastID       BlockID
	lastRollTime time.Time

	blocksPushed atomic.Int64
	active       atomic.Bool
	stopped      atomic.Bool

	drainDone chan struct{}
}

// New constructs a Generator for receiverID with the given
// configuration and listener. receiverID identifies the owning
// stream and is embedded in every BlockID this generator produces
// (spec.md §3, §4.6). cfg is validated immediately; an invalid
// configuration returns a *ConfigError and no Generator.
func New[T any](receiverID int64, cfg Config, listener Listener[T]) (*Generator[T], error) {
	cfg, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	g := &Generator[T]{
		receiverID: receiverID,
		cfg:        cfg,
		listener:   listener,
		logger:     cfg.Logger.With().Int64("receiver_id", receiverID).Logger(),
		limiter:    newRateLimiter(cfg.MaxRatePerSecond),
		queue:      newBlockQueue[T](cfg.BlockQueueCapacity),
		state:      Initialized,
	}
	g.timer = timer.New(cfg.Clock, cfg.interval(), g.roll, g.logger)
	return g, nil
}

// Start moves the generator from Initialized to Active, launching the
// roll timer and the drain worker. It returns ErrWrongState if the
// generator has already been started.
func (g *Generator[T]) Start() error {
	g.mu.Lock()
	if !canTransition(g.state, Active) {
		g.mu.Unlock()
		return ErrWrongState
	}
	g.state = Active
	g.mu.Unlock()

	g.active.Store(true)
	g.drainDone = make(chan struct{})

	g.logger.Info().Msg("generator starting")
	g.timer.Start()
	go g.drainLoop(g.drainDone)
	return nil
}

// Stop winds the generator down through its remaining two states in
// order (spec.md §4.7): the timer is stopped without interrupting an
// in-flight tick, finalRoll then rolls and enqueues whatever is left
// in the current buffer, then the drain worker is allowed to finish
// draining the queue before Stop returns. Stop blocks until the
// generator reaches StoppedAll.
//
// Unlike start/add*, calling Stop when the generator is not Active is
// not a wrong-state error (spec.md §7 only lists start/add* among
// wrong-state failures): it is a no-op that logs a warning and
// returns nil, covering both "never started" and "stop called twice".
func (g *Generator[T]) Stop() error {
	g.mu.Lock()
	if g.state != Active {
		state := g.state
		g.mu.Unlock()
		g.logger.Warn().Stringer("state", state).Msg("stop called while not active")
		return nil
	}
	g.state = StoppedAddingData
	g.mu.Unlock()
	g.logger.Info().Msg("generator stopping: no longer accepting data")

	g.timer.Stop(false)
	g.finalRoll()

	g.mu.Lock()
	g.state = StoppedGeneratingBlocks
	g.mu.Unlock()
	g.logger.Info().Msg("generator stopping: no longer generating blocks")

	<-g.drainDone

	g.mu.Lock()
	g.state = StoppedAll
	g.mu.Unlock()
	g.active.Store(false)
	g.stopped.Store(true)
	g.logger.Info().Msg("generator stopped")
	return nil
}

// Add appends item to the current buffer under rate limiting
// (spec.md §4.1, §4.3). Unlike AddWithCallback, it never invokes
// Listener.OnAddData — spec.md §4.3/§6 name on_add_data as an effect
// of add_with_callback and add_many_with_callback only. It returns
// ErrWrongState if the generator is not Active.
func (g *Generator[T]) Add(item T) error {
	if !g.snapshotActive() {
		return ErrWrongState
	}
	g.limiter.waitToPush()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Active {
		return ErrWrongState
	}
	g.buffer = append(g.buffer, item)
	return nil
}

// AddWithCallback appends item to the current buffer and reports
// metadata alongside it to Listener.OnAddData (spec.md §4.3).
func (g *Generator[T]) AddWithCallback(item T, metadata any) error {
	if !g.snapshotActive() {
		return ErrWrongState
	}
	g.limiter.waitToPush()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Active {
		return ErrWrongState
	}
	g.buffer = append(g.buffer, item)
	g.notifyAddData(item, metadata)
	return nil
}

// AddManyWithCallback appends every item in items to the current
// buffer as a single group under one OnAddData call carrying the
// full slice, then a single metadata value (spec.md §4.3). The group
// is admitted atomically: either every item lands in the same buffer
// generation or, if a roll races the call, none of the ordering
// guarantees are violated because the whole append happens under the
// state mutex.
func (g *Generator[T]) AddManyWithCallback(items []T, metadata any) error {
	if len(items) == 0 {
		return nil
	}
	if !g.snapshotActive() {
		return ErrWrongState
	}
	g.limiter.waitToPush()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Active {
		return ErrWrongState
	}
	g.buffer = append(g.buffer, items...)
	g.notifyAddData(items, metadata)
	return nil
}

// snapshotActive is the mandatory prologue check spec.md §4.3 step 1
// requires before ever touching the rate limiter: a generator that
// was never started, or has already stopped, must fail fast with
// ErrWrongState instead of blocking a caller inside wait_to_push. It
// is a plain state read under the mutex, not the lock-free IsActive:
// producers need the true current state here, and the step-3
// re-check after rate limiting still applies regardless.
func (g *Generator[T]) snapshotActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == Active
}

// notifyAddData invokes Listener.OnAddData. Callers must hold g.mu:
// spec.md §5 requires OnAddData to never overlap OnGenerateBlock, and
// the generator's mutex is what enforces that.
func (g *Generator[T]) notifyAddData(data any, metadata any) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().Interface("panic", r).Msg("OnAddData panicked")
		}
	}()
	g.listener.OnAddData(data, metadata)
}

// IsActive reports whether the generator is in the Active state. It
// is safe to call from any goroutine without acquiring the state
// mutex (spec.md §6): backed by an atomic flag so a fast poller never
// contends with producers or the workers.
func (g *Generator[T]) IsActive() bool {
	return g.active.Load()
}

// IsStopped reports whether the generator has fully reached
// StoppedAll. Like IsActive, this reads a lock-free snapshot.
func (g *Generator[T]) IsStopped() bool {
	return g.stopped.Load()
}

// finalRoll seals whatever remains in the buffer after the timer has
// stopped, mirroring roll's logic but running synchronously on the
// caller of Stop instead of the timer's worker goroutine. spec.md
// §4.7 treats this as an unconditional final tick, not an optional
// flush: a generator that never receives another Add call after
// Start still produces at most one trailing block here if any items
// were ever added. It always uses an uncancelable context: Stop only
// ever calls Timer.Stop(false) (non-interrupting), so this final
// flush must never be dropped.
func (g *Generator[T]) finalRoll() {
	g.roll(context.Background(), g.cfg.Clock.Now())
}
