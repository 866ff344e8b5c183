package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/inovaitive/revu/internal/platform/config"
)

const analysisWorkerName = "analysis"

// PendingAnalyzer analyzes feedback that has no analysis yet.
type PendingAnalyzer interface {
	AnalyzePending(ctx context.Context, limit int) (int, error)
}

// LockAcquirer hands out cluster-wide locks.
type LockAcquirer interface {
	TryAcquireAdvisoryLock(ctx context.Context, lockID int64) (release func(), acquired bool, err error)
}

// AnalysisWorker drains the un-analyzed backlog. Only the replica holding the
// advisory lock does work in a given step.
type AnalysisWorker struct {
	analyzer     PendingAnalyzer
	locks        LockAcquirer
	lockID       int64
	batchSize    int
	pollInterval time.Duration
	logger       *zerolog.Logger
}

// NewAnalysisWorker creates an AnalysisWorker.
func NewAnalysisWorker(cfg config.WorkerConfig, analyzer PendingAnalyzer, locks LockAcquirer, lockID int64, logger *zerolog.Logger) *AnalysisWorker {
	return &AnalysisWorker{
		analyzer:     analyzer,
		locks:        locks,
		lockID:       lockID,
		batchSize:    cfg.BatchSize,
		pollInterval: cfg.PollInterval,
		logger:       logger,
	}
}

// Run blocks until ctx is canceled.
func (w *AnalysisWorker) Run(ctx context.Context) error {
	return Loop(ctx, Config{
		Name:         analysisWorkerName,
		PollInterval: w.pollInterval,
		Step:         w.Step,
		Logger:       w.logger,
	})
}

// Step analyzes one batch. It reports more work when the batch was full.
func (w *AnalysisWorker) Step(ctx context.Context) (bool, error) {
	release, acquired, err := w.locks.TryAcquireAdvisoryLock(ctx, w.lockID)
	if err != nil {
		return false, fmt.Errorf("acquire analysis worker lock: %w", err)
	}

	if !acquired {
		w.logger.Debug().Msg("analysis worker lock held elsewhere, skipping")

		return false, nil
	}
	defer release()

	n, err := w.analyzer.AnalyzePending(ctx, w.batchSize)
	if err != nil {
		return false, fmt.Errorf("analyze pending: %w", err)
	}

	if n > 0 {
		w.logger.Info().Int("analyzed", n).Msg("pending feedback analyzed")
	}

	return n >= w.batchSize, nil
}
