package llm

import (
	"strings"

	"github.com/inovaitive/revu/internal/core/domain"
)

const (
	// FallbackConfidence marks judgments that did not come from a model.
	FallbackConfidence = 0.2
	fallbackScore      = 0.5
	fallbackSummary    = "Analysis pending - AI provider unavailable"
	fallbackModel      = "fallback"
)

var (
	positiveWords = []string{"great", "excellent", "love", "amazing", "perfect", "awesome"}
	negativeWords = []string{"bad", "terrible", "awful", "hate", "worst", "broken", "issue", "problem"}
)

// FallbackJudgment is the fixed low-confidence judgment used when the AI
// provider is unavailable or its output is unusable. Only the sentiment
// depends on text.
func FallbackJudgment(text string) domain.Judgment {
	pos, neg := countSentimentWords(strings.ToLower(text))

	sentiment := domain.SentimentNeutral
	score := 0.0

	switch {
	case pos > neg:
		sentiment = domain.SentimentPositive
		score = fallbackScore
	case neg > pos:
		sentiment = domain.SentimentNegative
		score = -fallbackScore
	}

	return domain.Judgment{
		Sentiment:      sentiment,
		SentimentScore: score,
		Categories:     []string{domain.CategoryUnclassified},
		Themes:         []string{},
		Insights: domain.Insights{
			Summary:            fallbackSummary,
			KeyPoints:          []string{"Automatic analysis failed", "Manual review recommended"},
			ActionItems:        []string{"Review feedback manually"},
			ChurnRisk:          false,
			ChurnIndicators:    []string{},
			CompetitorMentions: []string{},
			FeatureRequests:    []string{},
		},
		Confidence: FallbackConfidence,
		Fallback:   true,
		Model:      fallbackModel,
	}
}

// countSentimentWords counts how many distinct positive and negative words
// occur in lower-cased text.
func countSentimentWords(lower string) (pos, neg int) {
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}

	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	return pos, neg
}
