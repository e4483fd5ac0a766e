package blockgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterUnlimitedReturnsImmediately(t *testing.T) {
	r := newRateLimiter(0)
	start := time.Now()
	for i := 0; i < 1000; i++ {
		r.waitToPush()
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimiterThrottlesAboveBurst(t *testing.T) {
	r := newRateLimiter(20)
	start := time.Now()
	for i := 0; i < 40; i++ {
		r.waitToPush()
	}
	// 20/s with a burst well under 40 must take a non-trivial amount
	// of wall time to admit 40 units; this is a coarse smoke test, not
	// a precise rate assertion, since exact timing is not the
	// generator's own responsibility (that's golang.org/x/time/rate's).
	assert.Greater(t, time.Since(start), 200*time.Millisecond)
}

func TestBurstForRate(t *testing.T) {
	assert.Equal(t, 1, burstForRate(0))
	assert.Equal(t, 1, burstForRate(-5))
	assert.Equal(t, 5, burstForRate(5))
	assert.Equal(t, 100, burstForRate(1000))
}
