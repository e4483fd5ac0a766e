package blockgen

import "fmt"

// drainLoop runs on its own goroutine from Start until the generator
// reaches StoppedGeneratingBlocks and the queue has been fully
// drained, then closes done (spec.md §4.5).
//
// It runs in two phases. While the generator is still rolling new
// blocks (state < StoppedGeneratingBlocks), it polls the queue with a
// short timeout so it notices the state change promptly without
// busy-looping. Once rolling has stopped, it switches to blocking
// takes so it drains the remainder as fast as the listener can
// consume it instead of paying the poll timeout on every iteration.
func (g *Generator[T]) drainLoop(done chan<- struct{}) {
	defer close(done)

	for {
		if g.stateAtLeast(StoppedGeneratingBlocks) {
			break
		}
		block, ok := g.queue.poll(drainPollInterval)
		if !ok {
			continue
		}
		g.pushBlock(block)
	}

	remaining := g.queue.len()
	if remaining > 0 {
		g.logger.Info().Int("remaining", remaining).Msg("drain begin")
	}
	for !g.queue.isEmpty() {
		g.pushBlock(g.queue.take())
	}
}

// stateAtLeast reports whether the generator's current state is at
// or past target in the linear lifecycle (spec.md §3).
func (g *Generator[T]) stateAtLeast(target State) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state >= target
}

// pushBlock delivers a block to the listener, recovering from a
// panic and reporting it as a *DrainError instead of taking the
// drain worker down (spec.md §4.5, §4.8). Unlike OnAddData and
// OnGenerateBlock, this never runs under g.mu: the drain worker is
// single-threaded by construction, so no additional serialization is
// needed against itself, and letting it block freely here means a
// slow sink never throttles producers.
//
// blocksPushed counts every block handed to OnPushBlock, including
// ones where the listener itself then panics: the block did reach the
// sink's entry point, which is what Stats() is meant to report.
func (g *Generator[T]) pushBlock(block Block[T]) {
	defer g.blocksPushed.Inc()
	defer func() {
		if r := recover(); r != nil {
			g.reportError("OnPushBlock panicked", &DrainError{BlockID: block.ID, Cause: fmt.Errorf("%v", r)})
		}
	}()
	g.listener.OnPushBlock(block.ID, block.Items)
	g.logger.Info().Str("block_id", block.ID.String()).Int("items", len(block.Items)).Msg("pushed block")
}
