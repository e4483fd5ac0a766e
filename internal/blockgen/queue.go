package blockgen

import (
	"context"
	"time"
)

// blockQueue is a bounded FIFO of completed blocks (spec.md §3).
// Insertion blocks when the queue is full; removal blocks with a
// timeout so the drain worker can re-check the generator's state
// promptly (spec.md §4.5, §5). It is backed by a buffered channel,
// the idiomatic Go shape for a bounded blocking queue — no separate
// mutex or condition variable is needed because the channel already
// serializes access.
//
// Only roll ever calls putCtx: on the timer's worker while the timer
// is running, and once more from Stop's final flush after the timer
// has stopped. Both happen before the drain worker is allowed to exit
// (spec.md §4.7), so putCtx is never called concurrently with the
// queue going unread. There is
// accordingly no close/shutdown state to model here.
type blockQueue[T any] struct {
	ch chan Block[T]
}

// newBlockQueue creates a queue with the given capacity. capacity
// must be positive; callers validate this via Config.
func newBlockQueue[T any](capacity int) *blockQueue[T] {
	return &blockQueue[T]{ch: make(chan Block[T], capacity)}
}

// putCtx inserts a block, blocking if the queue is full, unless ctx is
// canceled first, in which case it returns false without inserting.
// The blocking case is the intended backpressure path (spec.md §4.6
// step 6): a full queue stalls the roll worker, which stalls the
// current buffer's growth only up to the next roll, which in turn is
// bounded upstream by rate limiting at add*. The cancellation case
// only fires under Timer.Stop(true) (spec.md §4.4); the generator's
// own shutdown path always uses a context that is never canceled.
func (q *blockQueue[T]) putCtx(ctx context.Context, b Block[T]) bool {
	select {
	case q.ch <- b:
		return true
	case <-ctx.Done():
		return false
	}
}

// poll removes the head block, waiting up to timeout for one to
// appear. The bool return is false on timeout, matching spec.md
// §4.5's "queue.poll(timeout = 10 ms)".
func (q *blockQueue[T]) poll(timeout time.Duration) (Block[T], bool) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case b := <-q.ch:
		return b, true
	case <-t.C:
		var zero Block[T]
		return zero, false
	}
}

// take removes the head block, blocking until one is available. Used
// by the drain worker's second loop (spec.md §4.5) to drain whatever
// remains once the generator has stopped adding new blocks.
func (q *blockQueue[T]) take() Block[T] {
	return <-q.ch
}

// len reports the number of blocks currently queued.
func (q *blockQueue[T]) len() int {
	return len(q.ch)
}

// isEmpty reports whether the queue currently holds no blocks.
func (q *blockQueue[T]) isEmpty() bool {
	return len(q.ch) == 0
}
