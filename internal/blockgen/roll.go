package blockgen

import (
	"context"
	"fmt"
	"time"
)

// roll seals the current buffer into a Block and hands it to the
// queue. It is the timer.Callback the roll timer invokes on every
// tick, and is also called once more, synchronously, from Stop to
// flush any trailing items (spec.md §4.6, §4.7).
//
// tickTime is the nominal tick boundary; the block's interval is
// considered to have started one interval earlier, matching spec.md
// §4.6 step 2 ("id = receiver_id + (tick_time - block_interval)").
//
// ctx is the timer's per-run cancellation context: it is only ever
// canceled by Timer.Stop(true) (spec.md §4.4's interrupting stop).
// The generator itself always calls Stop(false) (spec.md §4.7), so in
// normal operation ctx is never canceled and g.queue.putCtx behaves
// exactly like an unconditional blocking send.
func (g *Generator[T]) roll(ctx context.Context, tickTime time.Time) {
	intervalStart := tickTime.Add(-g.cfg.interval())

	g.mu.Lock()
	if len(g.buffer) == 0 {
		g.mu.Unlock()
		return
	}
	items := g.buffer
	g.buffer = nil
	id := makeBlockID(g.receiverID, intervalStart)
	g.lastID = id

	// OnGenerateBlock is invoked here, still holding g.mu, so it can
	// never overlap OnAddData (spec.md §5). invokeOnGenerateBlock
	// recovers internally: a panicking listener is reported through
	// OnError, not allowed to abort the roll and drop the block.
	g.invokeOnGenerateBlock(id)

	g.lastRollTime = tickTime
	block := Block[T]{ID: id, Items: items}
	g.mu.Unlock()

	// putCtx happens after releasing g.mu (spec.md §4.6 step 5,
	// "release the mutex", before step 6, "insert ... this may
	// block"): the queue's own blocking is the intended backpressure
	// mechanism, but it must stall only the roll worker, not every
	// Add* call. Add* re-acquires g.mu and keeps appending to the
	// fresh buffer while this call sits blocked on a full queue.
	if !g.queue.putCtx(ctx, block) {
		g.reportError("roll interrupted before block could be queued",
			&RollError{Cause: ctx.Err()})
	}
}

// invokeOnGenerateBlock calls Listener.OnGenerateBlock, recovering
// from a panic and routing it to OnError as a *RollError (spec.md §7
// kind 3, "exception inside the timer callback") instead of
// propagating (spec.md §4.8). The caller must hold g.mu.
func (g *Generator[T]) invokeOnGenerateBlock(id BlockID) {
	defer func() {
		if r := recover(); r != nil {
			g.reportError("OnGenerateBlock panicked", &RollError{Cause: fmt.Errorf("%v", r)})
		}
	}()
	g.listener.OnGenerateBlock(id)
}
