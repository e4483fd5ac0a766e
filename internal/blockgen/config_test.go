package blockgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg, err := DefaultConfig().validate()
	require.NoError(t, err)
	assert.Equal(t, DefaultBlockIntervalMS, cfg.BlockIntervalMS)
	assert.Equal(t, DefaultBlockQueueCapacity, cfg.BlockQueueCapacity)
	assert.NotNil(t, cfg.Clock)
}

func TestConfigRejectsNonPositiveInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockIntervalMS = 0
	_, err := cfg.validate()
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "BlockIntervalMS", cfgErr.Field)
}

func TestConfigRejectsNonPositiveQueueCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockQueueCapacity = -1
	_, err := cfg.validate()
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "BlockQueueCapacity", cfgErr.Field)
}

func TestConfigRejectsNegativeRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRatePerSecond = -1
	_, err := cfg.validate()
	require.Error(t, err)
}

func TestConfigFillsInMissingClock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clock = nil
	got, err := cfg.validate()
	require.NoError(t, err)
	assert.NotNil(t, got.Clock)
}
