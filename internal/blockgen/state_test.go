package blockgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(Initialized, Active))
	assert.True(t, canTransition(Active, StoppedAddingData))
	assert.True(t, canTransition(StoppedAddingData, StoppedGeneratingBlocks))
	assert.True(t, canTransition(StoppedGeneratingBlocks, StoppedAll))
}

func TestCanTransitionRejectsEverythingElse(t *testing.T) {
	assert.False(t, canTransition(Initialized, StoppedAddingData))
	assert.False(t, canTransition(Active, Active))
	assert.False(t, canTransition(Active, Initialized))
	assert.False(t, canTransition(StoppedAll, Initialized))
	assert.False(t, canTransition(StoppedAll, Active))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Initialized", Initialized.String())
	assert.Equal(t, "Active", Active.String())
	assert.Equal(t, "StoppedAddingData", StoppedAddingData.String())
	assert.Equal(t, "StoppedGeneratingBlocks", StoppedGeneratingBlocks.String())
	assert.Equal(t, "StoppedAll", StoppedAll.String())
	assert.Equal(t, "Unknown", State(99).String())
}
