package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/core/triage"
	"github.com/inovaitive/revu/internal/platform/observability"
	db "github.com/inovaitive/revu/internal/storage"
)

// ReviewRequest is a human decision on an analysis. Nil or empty fields
// leave the stored value alone.
type ReviewRequest struct {
	Approved      bool
	Sentiment     *string
	Categories    []string
	Themes        []string
	PriorityScore *int
	Urgency       *string
	Notes         *string
}

// Validate checks every override and reports all invalid ones at once.
func (r ReviewRequest) Validate() error {
	var errs []error

	if v, ok := providedLabel(r.Sentiment); ok && !domain.Sentiment(v).Valid() {
		errs = append(errs, fmt.Errorf("%w: unknown sentiment %q", coreerrors.ErrInvalidReview, v))
	}

	if r.PriorityScore != nil && (*r.PriorityScore < 0 || *r.PriorityScore > triage.MaxPriorityScore) {
		errs = append(errs, fmt.Errorf("%w: priority_score %d outside 0..%d",
			coreerrors.ErrInvalidReview, *r.PriorityScore, triage.MaxPriorityScore))
	}

	if v, ok := providedLabel(r.Urgency); ok && !domain.Urgency(v).Valid() {
		errs = append(errs, fmt.Errorf("%w: unknown urgency %q", coreerrors.ErrInvalidReview, v))
	}

	return errors.Join(errs...)
}

// apply writes the overrides onto a. The request must be valid.
func (r ReviewRequest) apply(a *domain.Analysis) {
	if v, ok := providedLabel(r.Sentiment); ok {
		a.Sentiment = domain.Sentiment(v)
	}

	if tags := domain.NormalizeTags(r.Categories); len(tags) > 0 {
		a.Categories = tags
	}

	if themes := cleanList(r.Themes); len(themes) > 0 {
		a.Themes = themes
	}

	if r.PriorityScore != nil {
		a.PriorityScore = *r.PriorityScore
		a.Urgency = triage.CategorizeUrgency(*r.PriorityScore)
	}

	if v, ok := providedLabel(r.Urgency); ok {
		a.Urgency = domain.Urgency(v)
	}

	if v, ok := provided(r.Notes); ok {
		a.Insights.ReviewNotes = v
	}

	a.RequiresReview = !r.Approved
}

// Review records reviewerID's decision on the analysis of a feedback item.
// Nothing is written unless the whole request is valid.
func (s *Service) Review(ctx context.Context, orgID, feedbackID, reviewerID string, req ReviewRequest) (*domain.Analysis, error) {
	if _, err := uuid.Parse(reviewerID); err != nil {
		return nil, fmt.Errorf("%w: reviewer %q", coreerrors.ErrInvalidID, reviewerID)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindFeedback(ctx, orgID, feedbackID); err != nil {
		return nil, fmt.Errorf("find feedback %s: %w", feedbackID, err)
	}

	var a *domain.Analysis

	err := s.locker.WithFeedbackLock(ctx, feedbackID, func(store db.AnalysisStore) error {
		var err error

		a, err = store.FindAnalysis(ctx, feedbackID)
		if err != nil {
			return fmt.Errorf("find analysis %s: %w", feedbackID, err)
		}

		req.apply(a)

		now := s.now()
		a.ReviewedBy = reviewerID
		a.ReviewedAt = &now

		if err := store.SaveAnalysis(ctx, a); err != nil {
			return fmt.Errorf("save review %s: %w", feedbackID, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ReviewsSubmitted.WithLabelValues(strconv.FormatBool(req.Approved)).Inc()

	s.logger.Info().
		Str(logFieldFeedbackID, feedbackID).
		Str("reviewer_id", reviewerID).
		Bool("approved", req.Approved).
		Msg("analysis reviewed")

	return a, nil
}

func provided(p *string) (string, bool) {
	if p == nil {
		return "", false
	}

	v := strings.TrimSpace(*p)

	return v, v != ""
}

func providedLabel(p *string) (string, bool) {
	v, ok := provided(p)

	return strings.ToLower(v), ok
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))

	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
