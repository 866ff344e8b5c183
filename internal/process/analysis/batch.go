package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/platform/observability"
)

// BatchError describes one failed item of a batch.
type BatchError struct {
	FeedbackID string `json:"feedback_id"`
	Error      string `json:"error"`
}

// BatchResult summarizes a batch run. Errors holds at most ten samples.
type BatchResult struct {
	SuccessCount int          `json:"success_count"`
	ErrorCount   int          `json:"error_count"`
	Total        int          `json:"total"`
	Errors       []BatchError `json:"errors"`
}

type batchCollector struct {
	mu  sync.Mutex
	res BatchResult
}

func newBatchCollector(total int) *batchCollector {
	return &batchCollector{res: BatchResult{Total: total, Errors: []BatchError{}}}
}

func (c *batchCollector) record(feedbackID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.res.SuccessCount++

		return
	}

	c.res.ErrorCount++

	if len(c.res.Errors) < maxBatchErrors {
		c.res.Errors = append(c.res.Errors, BatchError{FeedbackID: feedbackID, Error: batchErrorMessage(err)})
	}
}

func (c *batchCollector) result() BatchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.res
}

func batchErrorMessage(err error) string {
	switch {
	case errors.Is(err, coreerrors.ErrFeedbackNotFound):
		return coreerrors.ErrFeedbackNotFound.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "analysis canceled"
	default:
		return err.Error()
	}
}

// AnalyzeBatch analyzes ids of orgID with bounded parallelism. Item failures
// are counted and sampled; they never abort the rest of the batch.
func (s *Service) AnalyzeBatch(ctx context.Context, orgID string, ids []string, force bool) BatchResult {
	observability.BatchSize.Observe(float64(len(ids)))

	c := newBatchCollector(len(ids))

	var g errgroup.Group

	g.SetLimit(s.cfg.BatchConcurrency)

	for _, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				c.record(id, err)

				return nil
			}

			_, err := s.Analyze(ctx, orgID, id, force)
			if err != nil {
				s.logger.Error().Err(err).Str(logFieldFeedbackID, id).Msg("batch item failed")
			}

			c.record(id, err)

			return nil
		})
	}

	_ = g.Wait()

	res := c.result()

	s.logger.Info().
		Str(logFieldOrgID, orgID).
		Int("total", res.Total).
		Int("success", res.SuccessCount).
		Int("errors", res.ErrorCount).
		Msg("batch analysis finished")

	return res
}

// AnalyzePending analyzes up to limit feedback items, across organizations,
// that have no analysis yet. It returns the number analyzed.
func (s *Service) AnalyzePending(ctx context.Context, limit int) (int, error) {
	pending, err := s.repo.ListUnanalyzedFeedback(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unanalyzed feedback: %w", err)
	}

	defer s.updateBacklog(ctx)

	if len(pending) == 0 {
		return 0, nil
	}

	c := newBatchCollector(len(pending))

	var g errgroup.Group

	g.SetLimit(s.cfg.BatchConcurrency)

	for i := range pending {
		fb := &pending[i]

		g.Go(func() error {
			_, err := s.analyzeFeedback(ctx, fb, false)
			if err != nil {
				s.logger.Error().Err(err).Str(logFieldFeedbackID, fb.ID).Msg("pending analysis failed")
			}

			c.record(fb.ID, err)

			return nil
		})
	}

	_ = g.Wait()

	res := c.result()
	s.logger.Info().Int("analyzed", res.SuccessCount).Int("errors", res.ErrorCount).Msg("pending feedback processed")

	if res.SuccessCount == 0 {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("analyze pending: %w", err)
		}
	}

	return res.SuccessCount, nil
}

func (s *Service) updateBacklog(ctx context.Context) {
	n, err := s.repo.CountUnanalyzedFeedback(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("count unanalyzed feedback")

		return
	}

	observability.PendingBacklog.Set(float64(n))
}
