package blockgen

// Listener is the external capability set a Generator invokes at the
// four points spec.md §6 defines. Implementations are shared across
// every producer goroutine, the roll worker, and the drain worker, so
// they must be safe for concurrent use — except that OnAddData and
// OnGenerateBlock are mutually exclusive by construction (spec.md
// §5): the generator never calls either while the other is running.
type Listener[T any] interface {
	// OnAddData fires after a successful AddWithCallback or
	// AddManyWithCallback call, under the generator's state mutex; the
	// bare Add never calls it. data is a single T for AddWithCallback,
	// or a []T for AddManyWithCallback (spec.md §4.3). Implementations must be fast and non-blocking: this runs
	// under the same mutex that guards the current buffer and the
	// state, so a slow listener here directly throttles every
	// producer and stalls the roll worker.
	OnAddData(data any, metadata any)

	// OnGenerateBlock fires once per roll, immediately after the
	// current buffer is moved out and before it's handed to the
	// block queue, under the generator's state mutex. Must be fast
	// and non-blocking for the same reason as OnAddData.
	OnGenerateBlock(id BlockID)

	// OnPushBlock fires from the drain worker, single-threaded, once
	// per block removed from the queue. It is never called under the
	// generator's mutex and may block freely: throughput loss here is
	// local to the drain worker, not visible to producers.
	OnPushBlock(id BlockID, items []T)

	// OnError fires from either worker when it catches an error it
	// can recover from (spec.md §4.8). It may be called concurrently
	// with OnAddData/OnGenerateBlock or with itself from the other
	// worker, so implementations must be their own concurrency-safe
	// and fast.
	OnError(message string, cause error)
}
