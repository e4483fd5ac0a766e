package blockgen

import (
	"context"

	"golang.org/x/time/rate"
)

// rateLimiter is the admission gate spec.md §4.2 describes: a single
// operation, waitToPush, that blocks the caller until one unit of
// credit is available. It holds no lock of the generator and is
// always called outside the generator's state mutex.
type rateLimiter struct {
	limiter *rate.Limiter
}

// burstForRate picks a burst size proportional to the configured
// rate so that a caller admitting several items back-to-back isn't
// artificially serialized one-per-tick when the configured rate is
// comfortably above the actual admission cadence. A burst of 1 would
// make wait_to_push pace every single item even under light load;
// this keeps admission smooth while still enforcing the long-run rate.
func burstForRate(perSecond int) int {
	if perSecond <= 0 {
		return 1
	}
	if perSecond < 10 {
		return perSecond
	}
	return perSecond / 10
}

// newRateLimiter builds a limiter for maxPerSecond admissions/second.
// maxPerSecond <= 0 means unlimited: waitToPush returns immediately
// without ever touching the underlying token bucket, matching
// spec.md §4.2 ("under zero/unset rate it returns immediately").
func newRateLimiter(maxPerSecond int) *rateLimiter {
	if maxPerSecond <= 0 {
		return &rateLimiter{limiter: nil}
	}
	return &rateLimiter{
		limiter: rate.NewLimiter(rate.Limit(maxPerSecond), burstForRate(maxPerSecond)),
	}
}

// waitToPush blocks until one unit of admission credit is available.
// It reports no error: the context passed to the underlying Wait is
// always context.Background(), since spec.md §5 states there is no
// per-call timeout on add* and cancellation of a blocked producer is
// the rate limiter's own concern, not the generator's.
func (r *rateLimiter) waitToPush() {
	if r.limiter == nil {
		return
	}
	// rate.Limiter.Wait only returns an error if the context is
	// cancelled or the burst is smaller than the requested tokens
	// (we always request 1, and burst is always >= 1), so the error
	// is deliberately discarded here.
	_ = r.limiter.Wait(context.Background())
}
