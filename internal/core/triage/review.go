package triage

import "github.com/inovaitive/revu/internal/core/domain"

const (
	minTrustedConfidence    = 0.7
	minTrustedBugConfidence = 0.8
	reviewPriorityAbove     = 80
)

// ReviewReason names the rule that sent an analysis to human review.
type ReviewReason string

// Review reasons, in evaluation order.
const (
	ReasonNone                ReviewReason = ""
	ReasonLowConfidence       ReviewReason = "low_confidence"
	ReasonChurnRisk           ReviewReason = "churn_risk"
	ReasonHighPriority        ReviewReason = "high_priority"
	ReasonMixedSentiment      ReviewReason = "mixed_sentiment"
	ReasonConflictingCategory ReviewReason = "conflicting_categories"
	ReasonUncertainBug        ReviewReason = "uncertain_bug"
)

// ReviewInput carries the signals the review gate looks at.
type ReviewInput struct {
	Confidence    float64
	ChurnRisk     bool
	PriorityScore int
	Sentiment     domain.Sentiment
	Categories    []string
}

// RequiresHumanReview reports whether the analysis must be confirmed by a
// person before it is trusted, and which rule matched first.
func RequiresHumanReview(in ReviewInput) (bool, ReviewReason) {
	switch {
	case in.Confidence < minTrustedConfidence:
		return true, ReasonLowConfidence
	case in.ChurnRisk:
		return true, ReasonChurnRisk
	case in.PriorityScore > reviewPriorityAbove:
		return true, ReasonHighPriority
	case in.Sentiment == domain.SentimentMixed:
		return true, ReasonMixedSentiment
	case domain.ContainsString(in.Categories, domain.CategoryComplaint) &&
		domain.ContainsString(in.Categories, domain.CategoryPraise):
		return true, ReasonConflictingCategory
	case domain.ContainsString(in.Categories, domain.CategoryBug) && in.Confidence < minTrustedBugConfidence:
		return true, ReasonUncertainBug
	default:
		return false, ReasonNone
	}
}

// NeedsReview is RequiresHumanReview without the reason.
func NeedsReview(in ReviewInput) bool {
	needs, _ := RequiresHumanReview(in)

	return needs
}
