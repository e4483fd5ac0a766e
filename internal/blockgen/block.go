package blockgen

import (
	"fmt"
	"time"
)

// BlockID identifies a block. It is constructed from the owning
// receiver's numeric id and the timestamp at the start of the
// interval the block covers (spec.md §3, §4.6) — never randomly
// generated, so two generators with the same receiver id rolling at
// the same instant produce the same id. This is intentional: identity
// is a pure function of (receiver, interval start), not an opaque
// random token.
type BlockID struct {
	ReceiverID    int64
	IntervalStart time.Time
}

// makeBlockID builds the id for a block whose covered interval began
// at intervalStart. Per spec.md §4.6 step 2, the caller is
// responsible for having already subtracted block_interval_ms from
// the tick time so this anchors to the start of the interval, not its
// end.
func makeBlockID(receiverID int64, intervalStart time.Time) BlockID {
	return BlockID{ReceiverID: receiverID, IntervalStart: intervalStart}
}

// String renders the id as "<receiver>-<unix-millis>", a stable,
// human-readable, log-friendly form.
func (id BlockID) String() string {
	return fmt.Sprintf("%d-%d", id.ReceiverID, id.IntervalStart.UnixMilli())
}

// Block is an ordered group of items sealed together at a single
// roll (spec.md §3). Items is never empty: the bounded block queue's
// invariant is that every enqueued block has a non-empty buffer.
type Block[T any] struct {
	ID    BlockID
	Items []T
}
