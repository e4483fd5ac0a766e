// Package main provides a demo entry point for the block generator:
// a synthetic upstream producer feeding a Generator[string], logging
// every pushed block until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blockgen-io/blockgen/internal/blockgen"
	"github.com/blockgen-io/blockgen/internal/clock"
)

const (
	// ShutdownTimeout bounds how long the demo waits for a graceful stop.
	ShutdownTimeout = 10 * time.Second

	receiverID           = 1
	blockIntervalMS      = 250
	blockQueueCapacity   = 8
	maxRatePerSecond     = 200
	producerTickInterval = 5 * time.Millisecond
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info().Msg("shutting down gracefully")
		cancel()
	}()

	if err := run(ctx, logger); err != nil {
		logger.Error().Err(err).Msg("demo failed")
		return 1
	}
	return 0
}

// demoListener logs every callback the generator makes; it is
// deliberately a plain logging sink rather than anything that
// actually persists blocks, since a real block sink is out of scope
// here (spec.md §1 lists it as an external collaborator).
type demoListener struct {
	logger zerolog.Logger
}

func (l *demoListener) OnAddData(data any, metadata any) {
	l.logger.Debug().Interface("data", data).Interface("metadata", metadata).Msg("add")
}

func (l *demoListener) OnGenerateBlock(id blockgen.BlockID) {
	l.logger.Info().Stringer("block_id", id).Msg("generated block")
}

func (l *demoListener) OnPushBlock(id blockgen.BlockID, items []string) {
	l.logger.Info().Stringer("block_id", id).Int("items", len(items)).Msg("pushed block")
}

func (l *demoListener) OnError(message string, cause error) {
	l.logger.Error().Err(cause).Msg(message)
}

func run(ctx context.Context, logger zerolog.Logger) error {
	logger.Info().Msg("blockgend starting")

	cfg := blockgen.Config{
		BlockIntervalMS:    blockIntervalMS,
		BlockQueueCapacity: blockQueueCapacity,
		MaxRatePerSecond:   maxRatePerSecond,
		Clock:              clock.New(),
		Logger:             logger,
	}

	g, err := blockgen.New[string](receiverID, cfg, &demoListener{logger: logger})
	if err != nil {
		return fmt.Errorf("constructing generator: %w", err)
	}

	if err := g.Start(); err != nil {
		return fmt.Errorf("starting generator: %w", err)
	}
	logger.Info().Msg("blockgend started; producing synthetic items")

	var wg sync.WaitGroup
	wg.Add(1)
	go produceSyntheticItems(ctx, &wg, g, logger)

	<-ctx.Done()

	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()
	return stopWithTimeout(shutdownCtx, g)
}

// produceSyntheticItems is the demo's stand-in for the upstream
// receiver spec.md §1 treats as an external collaborator: it just
// tags a random payload with a correlation id and calls
// AddWithCallback until the context is cancelled.
func produceSyntheticItems(ctx context.Context, wg *sync.WaitGroup, g *blockgen.Generator[string], logger zerolog.Logger) {
	defer wg.Done()

	ticker := time.NewTicker(producerTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			item := fmt.Sprintf("event-%d", rand.Intn(1000)) //nolint:gosec // demo data, not security sensitive
			correlationID := uuid.New()
			if err := g.AddWithCallback(item, correlationID); err != nil {
				if !errors.Is(err, blockgen.ErrWrongState) {
					logger.Error().Err(err).Msg("unexpected add error")
				}
				return
			}
		}
	}
}

func stopWithTimeout(ctx context.Context, g *blockgen.Generator[string]) error {
	done := make(chan error, 1)
	go func() { done <- g.Stop() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("stop did not complete before shutdown timeout: %w", ctx.Err())
	}
}
