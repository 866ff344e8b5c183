package triage

const (
	ratingMidpoint = 2.5
	// Maximum disagreement between rating and AI score before it is worth logging.
	ratingDisagreementSpan = 1.0
)

// SentimentFromRating rescales a 0-5 rating onto the -1..1 sentiment scale.
// A missing rating is treated as neutral.
func SentimentFromRating(rating *float64) float64 {
	if rating == nil {
		return 0
	}

	return (*rating - ratingMidpoint) / ratingMidpoint
}

// RatingDisagrees reports whether the rating-derived sentiment points the
// opposite way from the AI sentiment score by a wide margin.
func RatingDisagrees(rating *float64, sentimentScore float64) bool {
	if rating == nil {
		return false
	}

	fromRating := SentimentFromRating(rating)
	if fromRating*sentimentScore >= 0 {
		return false
	}

	diff := fromRating - sentimentScore
	if diff < 0 {
		diff = -diff
	}

	return diff > ratingDisagreementSpan
}
