package blockgen

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockgen-io/blockgen/internal/clock"
)

func testConfig(t *testing.T, clk clock.Clock, intervalMS, queueCap, ratePerSec int) Config {
	t.Helper()
	return Config{
		BlockIntervalMS:    intervalMS,
		BlockQueueCapacity: queueCap,
		MaxRatePerSecond:   ratePerSec,
		Clock:              clk,
	}
}

// TestBasicRoll covers spec.md §8 scenario 1: a handful of items
// admitted before a single tick land in exactly one pushed block, in
// admission order, with the generate-then-push ordering the contract
// requires.
func TestBasicRoll(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	listener := newRecordingListener()
	cfg := testConfig(t, clk, 100, 4, 0)

	g, err := New[string](1, cfg, listener)
	require.NoError(t, err)
	require.NoError(t, g.Start())
	time.Sleep(10 * time.Millisecond) // let the timer register its ticker before we advance the clock

	require.NoError(t, g.AddWithCallback("a", nil))
	require.NoError(t, g.AddWithCallback("b", nil))
	require.NoError(t, g.AddWithCallback("c", nil))

	clk.Advance(100 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, g.Stop())

	require.Equal(t, 1, listener.pushCount())
	assert.Equal(t, []string{"a", "b", "c"}, listener.pushes[0].items)
	require.Len(t, listener.blocks, 1)
	assert.Equal(t, listener.pushes[0].id, listener.blocks[0])
	assert.True(t, g.IsStopped())
}

// TestEmptyRollProducesNoBlock covers the boundary behaviour in
// spec.md §8: a tick with nothing in the buffer must not call the
// listener at all.
func TestEmptyRollProducesNoBlock(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	listener := newRecordingListener()
	cfg := testConfig(t, clk, 50, 4, 0)

	g, err := New[string](1, cfg, listener)
	require.NoError(t, err)
	require.NoError(t, g.Start())
	time.Sleep(10 * time.Millisecond)

	clk.Advance(50 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, g.Stop())
	assert.Equal(t, 0, listener.pushCount())
	assert.Empty(t, listener.blocks)
}

// TestGroupAtomicity covers spec.md §8 scenario 2: add_many_with_callback
// admits its whole group as one OnAddData call and the group survives
// as a contiguous run in whichever block it lands in.
func TestGroupAtomicity(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	listener := newRecordingListener()
	cfg := testConfig(t, clk, 100, 8, 0)

	g, err := New[string](1, cfg, listener)
	require.NoError(t, err)
	require.NoError(t, g.Start())
	time.Sleep(10 * time.Millisecond)

	group := []string{"x1", "x2", "x3", "x4", "x5"}
	require.NoError(t, g.AddManyWithCallback(group, "m"))
	for i := 0; i < 50; i++ {
		require.NoError(t, g.Add("p"))
	}

	clk.Advance(100 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, g.Stop())

	require.Equal(t, 1, listener.pushCount())
	items := listener.pushes[0].items
	idx := indexOfSubsequence(items, group)
	require.GreaterOrEqual(t, idx, 0, "group must appear contiguously")

	// Add (the bare, callback-less variant) must never invoke
	// OnAddData (spec.md §4.3/§6): only the one group call does.
	require.Len(t, listener.adds, 1)
	assert.Equal(t, group, listener.adds[0].data)
	assert.Equal(t, "m", listener.adds[0].metadata)
}

func indexOfSubsequence(haystack, needle []string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// TestStopOrdering covers spec.md §8 scenario 4: stopping immediately
// after admitting items still rolls and pushes them via the final
// flush inside Stop, and add* afterward fails wrong-state.
func TestStopOrdering(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	listener := newRecordingListener()
	cfg := testConfig(t, clk, 10*1000, 4, 0) // interval long enough that no tick fires on its own

	g, err := New[string](1, cfg, listener)
	require.NoError(t, err)
	require.NoError(t, g.Start())

	for i := 0; i < 10; i++ {
		require.NoError(t, g.Add("item"))
	}

	require.NoError(t, g.Stop())

	require.Equal(t, 1, listener.pushCount())
	assert.Len(t, listener.pushes[0].items, 10)

	err = g.Add("late")
	assert.ErrorIs(t, err, ErrWrongState)
	assert.True(t, g.IsStopped())
}

// TestWrongStateRejection covers spec.md §8 scenario 5.
func TestWrongStateRejection(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	listener := newRecordingListener()
	cfg := testConfig(t, clk, 100, 4, 0)

	g, err := New[string](1, cfg, listener)
	require.NoError(t, err)

	err = g.Add("x")
	assert.ErrorIs(t, err, ErrWrongState)

	require.NoError(t, g.Start())
	err = g.Start()
	assert.ErrorIs(t, err, ErrWrongState)

	require.NoError(t, g.Stop())

	err = g.Add("y")
	assert.ErrorIs(t, err, ErrWrongState)

	// stop again is a no-op, not an error
	err = g.Stop()
	assert.NoError(t, err)
}

// TestListenerErrorRecovery covers spec.md §8 scenario 6: a panicking
// OnGenerateBlock is reported through OnError and does not stop
// subsequent ticks or leave the mutex locked.
func TestListenerErrorRecovery(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	listener := newRecordingListener()
	failedOnce := false
	listener.onGenerateBlockHook = func(id BlockID) {
		if !failedOnce {
			failedOnce = true
			panic("boom")
		}
	}
	cfg := testConfig(t, clk, 50, 4, 0)

	g, err := New[string](1, cfg, listener)
	require.NoError(t, err)
	require.NoError(t, g.Start())
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, g.Add("a"))
	clk.Advance(50 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, g.Add("b"))
	clk.Advance(50 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, g.Stop())

	require.GreaterOrEqual(t, listener.errCount(), 1)
	assert.GreaterOrEqual(t, listener.pushCount(), 1)
}

func TestConfigErrorFromNew(t *testing.T) {
	cfg := Config{BlockIntervalMS: 0, BlockQueueCapacity: 1}
	_, err := New[string](1, cfg, newRecordingListener())
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
