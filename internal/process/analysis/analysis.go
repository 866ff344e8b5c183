// Package analysis runs the triage pipeline for feedback items.
//
// For each item the service extracts NLP signals, asks the AI judge for a
// structured judgment, scores and classifies the result, applies the review
// gate and persists exactly one analysis record per feedback item.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/core/llm"
	"github.com/inovaitive/revu/internal/core/triage"
	"github.com/inovaitive/revu/internal/platform/observability"
	db "github.com/inovaitive/revu/internal/storage"
)

// Repository is the persistence the service needs.
type Repository interface {
	FindFeedback(ctx context.Context, orgID, id string) (*domain.Feedback, error)
	FindAnalysis(ctx context.Context, feedbackID string) (*domain.Analysis, error)
	ListPendingReview(ctx context.Context, orgID string, limit int) ([]domain.Analysis, error)
	ListUnanalyzedFeedback(ctx context.Context, limit int) ([]domain.Feedback, error)
	CountUnanalyzedFeedback(ctx context.Context) (int, error)
}

// Locker serializes read-check-write sequences on one feedback item. The
// store handed to fn is the only one fn may use while the lock is held.
type Locker interface {
	WithFeedbackLock(ctx context.Context, feedbackID string, fn func(db.AnalysisStore) error) error
}

// Compile-time assertion that *db.DB implements Repository and Locker.
var (
	_ Repository = (*db.DB)(nil)
	_ Locker     = (*db.DB)(nil)
)

// SignalExtractor produces keyword and entity signals for a text.
type SignalExtractor interface {
	Extract(text string) domain.NLPSignals
}

// JudgmentProvider returns an AI judgment, or a fallback one, for a text.
type JudgmentProvider interface {
	Judge(ctx context.Context, req llm.JudgeRequest) domain.Judgment
}

// Alerter is told about critical analyses that wait for a human.
type Alerter interface {
	AlertCriticalReview(ctx context.Context, fb *domain.Feedback, a *domain.Analysis) error
}

// Analysis outcome labels.
const (
	StatusCreated = "created"
	StatusUpdated = "updated"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Log field names.
const (
	logFieldFeedbackID = "feedback_id"
	logFieldOrgID      = "organization_id"
	logFieldReason     = "reason"
	logFieldScore      = "priority_score"
)

const (
	defaultBatchConcurrency = 4
	maxBatchErrors          = 10
	alertTimeout            = 10 * time.Second
	reviewReasonNone        = "none"
)

// Config holds orchestrator settings.
type Config struct {
	BatchConcurrency int
}

// Service sequences extraction, judgment, scoring and gating.
type Service struct {
	repo      Repository
	locker    Locker
	extractor SignalExtractor
	judge     JudgmentProvider
	alerter   Alerter
	cfg       Config
	logger    *zerolog.Logger
	now       func() time.Time
}

// New creates a Service. A nil logger disables logging.
func New(cfg Config, repo Repository, locker Locker, extractor SignalExtractor, judge JudgmentProvider, logger *zerolog.Logger) *Service {
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = defaultBatchConcurrency
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Service{
		repo:      repo,
		locker:    locker,
		extractor: extractor,
		judge:     judge,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// SetAlerter enables critical-review alerts.
func (s *Service) SetAlerter(a Alerter) {
	s.alerter = a
}

// Analyze produces the analysis for one feedback item of orgID.
// An existing analysis is returned unchanged unless force is set.
func (s *Service) Analyze(ctx context.Context, orgID, feedbackID string, force bool) (*domain.Analysis, error) {
	fb, err := s.repo.FindFeedback(ctx, orgID, feedbackID)
	if err != nil {
		return nil, fmt.Errorf("find feedback %s: %w", feedbackID, err)
	}

	return s.analyzeFeedback(ctx, fb, force)
}

// Get returns the stored analysis for a feedback item of orgID.
func (s *Service) Get(ctx context.Context, orgID, feedbackID string) (*domain.Analysis, error) {
	if _, err := s.repo.FindFeedback(ctx, orgID, feedbackID); err != nil {
		return nil, fmt.Errorf("find feedback %s: %w", feedbackID, err)
	}

	a, err := s.repo.FindAnalysis(ctx, feedbackID)
	if err != nil {
		return nil, fmt.Errorf("find analysis %s: %w", feedbackID, err)
	}

	return a, nil
}

// PendingReview lists analyses of orgID awaiting a human, highest priority first.
func (s *Service) PendingReview(ctx context.Context, orgID string, limit int) ([]domain.Analysis, error) {
	res, err := s.repo.ListPendingReview(ctx, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending review: %w", err)
	}

	if res == nil {
		res = []domain.Analysis{}
	}

	return res, nil
}

func (s *Service) analyzeFeedback(ctx context.Context, fb *domain.Feedback, force bool) (*domain.Analysis, error) {
	start := time.Now()
	logger := s.logger.With().Str(logFieldFeedbackID, fb.ID).Str(logFieldOrgID, fb.OrganizationID).Logger()

	if !force {
		existing, err := s.findLocked(ctx, fb.ID)
		if err != nil {
			observability.AnalysesCompleted.WithLabelValues(StatusError).Inc()

			return nil, err
		}

		if existing != nil {
			logger.Debug().Msg("analysis already exists")
			observability.AnalysesCompleted.WithLabelValues(StatusSkipped).Inc()

			return existing, nil
		}
	}

	candidate, reason := s.evaluate(ctx, fb, &logger)

	saved, status, err := s.store(ctx, candidate, force)
	if err != nil {
		observability.AnalysesCompleted.WithLabelValues(StatusError).Inc()

		return nil, err
	}

	observability.AnalysesCompleted.WithLabelValues(status).Inc()

	if status == StatusSkipped {
		return saved, nil
	}

	observability.AnalysisDuration.Observe(time.Since(start).Seconds())
	observability.AnalysisUrgency.WithLabelValues(string(saved.Urgency)).Inc()
	observability.AnalysisPriorityScore.Observe(float64(saved.PriorityScore))
	observability.ReviewGateDecisions.WithLabelValues(reasonLabel(reason)).Inc()

	logger.Info().
		Str("status", status).
		Int(logFieldScore, saved.PriorityScore).
		Str("urgency", string(saved.Urgency)).
		Bool("requires_review", saved.RequiresReview).
		Str(logFieldReason, reasonLabel(reason)).
		Msg("feedback analyzed")

	s.maybeAlert(ctx, fb, saved, &logger)

	return saved, nil
}

// evaluate runs the pipeline without touching storage. It cannot fail: the
// extractor and judge both degrade to fallbacks.
func (s *Service) evaluate(ctx context.Context, fb *domain.Feedback, logger *zerolog.Logger) (*domain.Analysis, triage.ReviewReason) {
	signals := s.extractor.Extract(fb.Content)

	j := s.judge.Judge(ctx, llm.JudgeRequest{
		Text:    fb.Content,
		Author:  fb.AuthorName,
		Source:  fb.Source,
		Rating:  fb.Rating,
		Signals: &signals,
	})

	if j.Fallback {
		logger.Warn().Msg("using fallback judgment")
	}

	if triage.RatingDisagrees(fb.Rating, j.SentimentScore) {
		logger.Warn().
			Float64("rating", *fb.Rating).
			Float64("rating_sentiment", triage.SentimentFromRating(fb.Rating)).
			Float64("ai_sentiment", j.SentimentScore).
			Msg("rating disagrees with AI sentiment")
	}

	// Only competitors the judge reported count toward the score; the stored
	// list also carries NLP hits.
	competitors := MergeCompetitors(signals.CompetitorMentions, j.Insights.CompetitorMentions)

	score := triage.CalculatePriorityScore(triage.ScoreInput{
		SentimentScore:     j.SentimentScore,
		UrgencyKeywords:    signals.UrgencyKeywords,
		ChurnRisk:          j.Insights.ChurnRisk,
		CompetitorMentions: j.Insights.CompetitorMentions,
		Rating:             fb.Rating,
		FeedbackDate:       fb.FeedbackDate,
		Now:                s.now(),
	})

	needsReview, reason := triage.RequiresHumanReview(triage.ReviewInput{
		Confidence:    j.Confidence,
		ChurnRisk:     j.Insights.ChurnRisk,
		PriorityScore: score,
		Sentiment:     j.Sentiment,
		Categories:    j.Categories,
	})

	return &domain.Analysis{
		FeedbackID:         fb.ID,
		Sentiment:          j.Sentiment,
		SentimentScore:     j.SentimentScore,
		Categories:         j.Categories,
		Themes:             j.Themes,
		PriorityScore:      score,
		Urgency:            triage.CategorizeUrgency(score),
		Insights:           j.Insights,
		ChurnRisk:          j.Insights.ChurnRisk,
		CompetitorMentions: competitors,
		ExtractedEntities:  signals.Entities,
		ConfidenceScore:    j.Confidence,
		RequiresReview:     needsReview,
		AIModelVersion:     j.Model,
	}, reason
}

// findLocked returns the stored analysis, or nil when there is none.
func (s *Service) findLocked(ctx context.Context, feedbackID string) (*domain.Analysis, error) {
	var existing *domain.Analysis

	err := s.locker.WithFeedbackLock(ctx, feedbackID, func(store db.AnalysisStore) error {
		var err error
		existing, err = findExisting(ctx, store, feedbackID)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("lock feedback %s: %w", feedbackID, err)
	}

	return existing, nil
}

func findExisting(ctx context.Context, store db.AnalysisStore, feedbackID string) (*domain.Analysis, error) {
	a, err := store.FindAnalysis(ctx, feedbackID)
	if errors.Is(err, coreerrors.ErrAnalysisNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find analysis %s: %w", feedbackID, err)
	}

	return a, nil
}

// store writes candidate under the feedback lock. Without force an analysis
// written concurrently by someone else wins and is returned instead.
func (s *Service) store(ctx context.Context, candidate *domain.Analysis, force bool) (*domain.Analysis, string, error) {
	saved, status := candidate, StatusCreated

	err := s.locker.WithFeedbackLock(ctx, candidate.FeedbackID, func(store db.AnalysisStore) error {
		existing, err := findExisting(ctx, store, candidate.FeedbackID)
		if err != nil {
			return err
		}

		switch {
		case existing != nil && !force:
			saved, status = existing, StatusSkipped

			return nil
		case existing != nil:
			status = StatusUpdated
			candidate.ID = existing.ID
			candidate.CreatedAt = existing.CreatedAt

			if existing.IsReviewed() {
				candidate.ReviewedBy = existing.ReviewedBy
				candidate.ReviewedAt = existing.ReviewedAt
			}
		default:
			candidate.ID = uuid.NewString()
		}

		if err := store.SaveAnalysis(ctx, candidate); err != nil {
			return fmt.Errorf("save analysis %s: %w", candidate.FeedbackID, err)
		}

		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("store analysis %s: %w", candidate.FeedbackID, err)
	}

	return saved, status, nil
}

func (s *Service) maybeAlert(ctx context.Context, fb *domain.Feedback, a *domain.Analysis, logger *zerolog.Logger) {
	if s.alerter == nil || a.Urgency != domain.UrgencyCritical || !a.RequiresReview {
		return
	}

	alertCtx, cancel := context.WithTimeout(ctx, alertTimeout)
	defer cancel()

	if err := s.alerter.AlertCriticalReview(alertCtx, fb, a); err != nil {
		logger.Warn().Err(err).Msg("critical review alert failed")
	}
}

func reasonLabel(r triage.ReviewReason) string {
	if r == triage.ReasonNone {
		return reviewReasonNone
	}

	return string(r)
}
