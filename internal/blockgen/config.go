package blockgen

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/blockgen-io/blockgen/internal/clock"
)

// Default configuration values (spec.md §3).
const (
	// DefaultBlockIntervalMS is the default roll period.
	DefaultBlockIntervalMS = 200

	// DefaultBlockQueueCapacity is the default max number of
	// completed-but-undrained blocks the queue will hold.
	DefaultBlockQueueCapacity = 10
)

// Config holds the construction-time configuration for a Generator.
// The three fields named in spec.md §3 are required; Clock and Logger
// are override points used by tests and by callers who want their own
// logging sink, defaulting to the real clock and a disabled logger.
type Config struct {
	// BlockIntervalMS is the roll period in milliseconds. Must be positive.
	BlockIntervalMS int

	// BlockQueueCapacity is the max number of completed blocks the
	// queue holds before the roll worker blocks on insert. Must be
	// positive.
	BlockQueueCapacity int

	// MaxRatePerSecond caps admissions per second. Zero (the zero
	// value) means unlimited: wait_to_push returns immediately.
	MaxRatePerSecond int

	// Clock supplies time and tick scheduling. Defaults to the real
	// system clock.
	Clock clock.Clock

	// Logger receives the structured log lines named in spec.md §6.
	// Defaults to a disabled logger (zerolog.Nop()).
	Logger zerolog.Logger
}

// DefaultConfig returns the spec.md §3 defaults with an unlimited
// rate, the real system clock, and logging disabled. Callers
// typically start from this and override only the fields they care
// about.
func DefaultConfig() Config {
	return Config{
		BlockIntervalMS:    DefaultBlockIntervalMS,
		BlockQueueCapacity: DefaultBlockQueueCapacity,
		MaxRatePerSecond:   0,
		Clock:              clock.New(),
		Logger:             zerolog.Nop(),
	}
}

// validate checks the configuration and fills in defaults for the
// override points left unset, returning a *ConfigError for anything
// spec.md §6 says must be rejected at construction.
func (c Config) validate() (Config, error) {
	if c.BlockIntervalMS <= 0 {
		return Config{}, &ConfigError{Field: "BlockIntervalMS", Value: c.BlockIntervalMS, Msg: "must be positive"}
	}
	if c.BlockQueueCapacity <= 0 {
		return Config{}, &ConfigError{Field: "BlockQueueCapacity", Value: c.BlockQueueCapacity, Msg: "must be positive"}
	}
	if c.MaxRatePerSecond < 0 {
		return Config{}, &ConfigError{Field: "MaxRatePerSecond", Value: c.MaxRatePerSecond, Msg: "must not be negative"}
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	// A zero-value zerolog.Logger silently discards everything written
	// to it, so an unset Logger needs no special-casing here.
	return c, nil
}

// interval returns the block interval as a time.Duration.
func (c Config) interval() time.Duration {
	return time.Duration(c.BlockIntervalMS) * time.Millisecond
}
