package blockgen

import "time"

// Stats is a point-in-time snapshot of a Generator's counters, useful
// for health checks and demo output. It is not part of the core
// component design; it exists because a long-running generator with
// no visibility into its own queue depth is hard to operate.
type Stats struct {
	State        State
	BufferLen    int
	QueueLen     int
	BlocksPushed int64
	LastBlockID  BlockID
	LastRollTime time.Time
}

// Stats returns a snapshot of the generator's current counters. It
// briefly holds g.mu, the same mutex Add* and roll use, so it never
// observes a torn buffer/state pair. BlocksPushed is read from its own
// atomic counter rather than under g.mu, since the drain worker
// increments it in pushBlock without holding g.mu.
func (g *Generator[T]) Stats() Stats {
	g.mu.Lock()
	state := g.state
	bufferLen := len(g.buffer)
	lastID := g.lastID
	lastRoll := g.lastRollTime
	g.mu.Unlock()

	return Stats{
		State:        state,
		BufferLen:    bufferLen,
		QueueLen:     g.queue.len(),
		BlocksPushed: g.blocksPushed.Load(),
		LastBlockID:  lastID,
		LastRollTime: lastRoll,
	}
}
