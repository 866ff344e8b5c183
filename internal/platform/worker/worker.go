// Package worker runs poll-based background loops.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const logFieldWorker = "worker"

// StepFunc does one unit of work. Returning more=true asks the loop to run
// again without waiting.
type StepFunc func(ctx context.Context) (more bool, err error)

// Config configures the worker loop behavior.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	// PollInterval is the pause between steps when there is no more work.
	PollInterval time.Duration

	// Step is called each iteration.
	Step StepFunc

	// OnError is called when Step returns an error or panics.
	// Return true to continue, false to exit the loop.
	OnError func(err error) bool

	Logger *zerolog.Logger
}

// Loop runs cfg.Step until ctx is canceled or OnError asks it to stop.
// It returns a wrapped ctx.Err() on cancellation.
func Loop(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	logger.Info().Str(logFieldWorker, cfg.Name).Dur("poll_interval", cfg.PollInterval).Msg("starting worker loop")
	defer logger.Info().Str(logFieldWorker, cfg.Name).Msg("worker loop stopped")

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("worker loop %s: %w", cfg.Name, err)
		}

		more, err := runStep(ctx, cfg.Step)
		if err != nil && ctx.Err() == nil {
			if cfg.OnError != nil {
				if !cfg.OnError(err) {
					return err
				}
			} else {
				logger.Error().Err(err).Str(logFieldWorker, cfg.Name).Msg("worker step failed")
			}
		}

		if more && err == nil {
			continue
		}

		if err := Wait(ctx, cfg.PollInterval); err != nil {
			return fmt.Errorf("worker loop %s: %w", cfg.Name, err)
		}
	}
}

// runStep turns a panic inside step into an error so one bad item cannot
// kill the loop.
func runStep(ctx context.Context, step StepFunc) (more bool, err error) {
	if step == nil {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			more = false
			err = fmt.Errorf("worker step panic: %v", r)
		}
	}()

	return step(ctx)
}

// Wait blocks until duration elapses or context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
