// Package triage holds the deterministic rules that turn analysis signals into
// a priority score, an urgency tier and a human review decision.
//
// Everything in this package is pure: no I/O, no shared state, safe for
// concurrent use.
package triage

import (
	"time"
)

// MaxPriorityScore is the upper bound of the priority scale.
const MaxPriorityScore = 100

// Sentiment bucket thresholds and points.
const (
	sentimentVeryNegative     = -0.7
	sentimentNegative         = -0.4
	sentimentSlightlyNegative = -0.1
	sentimentNeutral          = 0.1

	pointsVeryNegative     = 30
	pointsNegative         = 25
	pointsSlightlyNegative = 15
	pointsNeutral          = 10
	pointsPositive         = 5
)

// Keyword, churn and competitor buckets.
const (
	pointsPerUrgencyKeyword = 10
	maxUrgencyPoints        = 30
	pointsChurnRisk         = 25
	pointsCompetitor        = 15
)

// Rating bucket.
const (
	ratingVeryLow  = 2.0
	ratingLow      = 3.0
	ratingBelowAvg = 3.5

	pointsRatingVeryLow  = 10
	pointsRatingLow      = 7
	pointsRatingBelowAvg = 4
)

// Recency bucket, in whole elapsed days.
const (
	recencyToday   = 1
	recencyWeek    = 7
	recencyMonth   = 30
	recencyQuarter = 90

	pointsToday   = 10
	pointsWeek    = 8
	pointsMonth   = 5
	pointsQuarter = 2
)

// Compound boosts.
const (
	churnBoostSentimentBelow = -0.5
	pointsChurnBoost         = 10
	manyUrgencyKeywords      = 3
	pointsManyUrgency        = 5
)

const hoursPerDay = 24 * time.Hour

// ScoreInput carries everything the priority scorer looks at.
type ScoreInput struct {
	SentimentScore     float64
	UrgencyKeywords    []string
	ChurnRisk          bool
	CompetitorMentions []string
	Rating             *float64
	FeedbackDate       *time.Time
	// Now is the reference time for recency. Zero means time.Now().
	Now time.Time
}

// ScoreBreakdown is the per-bucket contribution to a priority score.
type ScoreBreakdown struct {
	Sentiment  int
	Urgency    int
	Churn      int
	Competitor int
	Rating     int
	Recency    int
	Boost      int
}

// Total returns the uncapped sum of all buckets.
func (b ScoreBreakdown) Total() int {
	return b.Sentiment + b.Urgency + b.Churn + b.Competitor + b.Rating + b.Recency + b.Boost
}

// Score returns the capped priority score.
func (b ScoreBreakdown) Score() int {
	return min(b.Total(), MaxPriorityScore)
}

// CalculatePriorityScore combines the analysis signals into a score in [0, 100].
func CalculatePriorityScore(in ScoreInput) int {
	return Breakdown(in).Score()
}

// Breakdown computes each bucket of the priority score separately.
func Breakdown(in ScoreInput) ScoreBreakdown {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	keywordCount := len(in.UrgencyKeywords)

	b := ScoreBreakdown{
		Sentiment: sentimentPoints(in.SentimentScore),
		Urgency:   min(keywordCount*pointsPerUrgencyKeyword, maxUrgencyPoints),
	}

	if in.ChurnRisk {
		b.Churn = pointsChurnRisk
	}

	if len(in.CompetitorMentions) > 0 {
		b.Competitor = pointsCompetitor
	}

	if in.Rating != nil {
		b.Rating = ratingPoints(*in.Rating)
	}

	if in.FeedbackDate != nil {
		b.Recency = recencyPoints(ElapsedDays(now, *in.FeedbackDate))
	}

	if in.SentimentScore < churnBoostSentimentBelow && in.ChurnRisk {
		b.Boost += pointsChurnBoost
	}

	if keywordCount >= manyUrgencyKeywords {
		b.Boost += pointsManyUrgency
	}

	return b
}

// ElapsedDays returns the whole number of days between date and now,
// truncated toward zero. Future dates give zero or a negative count.
func ElapsedDays(now, date time.Time) int {
	return int(now.Sub(date) / hoursPerDay)
}

// Ranges overlap by construction, so order matters.
func sentimentPoints(score float64) int {
	switch {
	case score <= sentimentVeryNegative:
		return pointsVeryNegative
	case score <= sentimentNegative:
		return pointsNegative
	case score <= sentimentSlightlyNegative:
		return pointsSlightlyNegative
	case score <= sentimentNeutral:
		return pointsNeutral
	default:
		return pointsPositive
	}
}

func ratingPoints(rating float64) int {
	switch {
	case rating < ratingVeryLow:
		return pointsRatingVeryLow
	case rating < ratingLow:
		return pointsRatingLow
	case rating < ratingBelowAvg:
		return pointsRatingBelowAvg
	default:
		return 0
	}
}

func recencyPoints(days int) int {
	switch {
	case days < recencyToday:
		return pointsToday
	case days < recencyWeek:
		return pointsWeek
	case days < recencyMonth:
		return pointsMonth
	case days < recencyQuarter:
		return pointsQuarter
	default:
		return 0
	}
}
