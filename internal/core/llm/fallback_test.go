package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inovaitive/revu/internal/core/domain"
)

func TestFallbackJudgment_Sentiment(t *testing.T) {
	tests := []struct {
		text      string
		want      domain.Sentiment
		wantScore float64
	}{
		{"Amazing product, I love it", domain.SentimentPositive, 0.5},
		{"Terrible support and the app is broken", domain.SentimentNegative, -0.5},
		{"Great idea but a real problem", domain.SentimentNeutral, 0},
		{"Just checking in", domain.SentimentNeutral, 0},
		{"bad bad bad but great and perfect", domain.SentimentPositive, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := FallbackJudgment(tt.text)

			assert.Equal(t, tt.want, got.Sentiment)
			assert.InDelta(t, tt.wantScore, got.SentimentScore, 1e-9)
		})
	}
}

func TestFallbackJudgment_FixedFields(t *testing.T) {
	got := FallbackJudgment("anything")

	assert.True(t, got.Fallback)
	assert.Equal(t, 0.2, got.Confidence)
	assert.Equal(t, []string{domain.CategoryUnclassified}, got.Categories)
	assert.Empty(t, got.Themes)
	assert.NotNil(t, got.Themes)
	assert.Equal(t, fallbackSummary, got.Insights.Summary)
	assert.False(t, got.Insights.ChurnRisk)
	assert.NotEmpty(t, got.Insights.KeyPoints)
	assert.NotEmpty(t, got.Insights.ActionItems)
}

func TestFallbackJudgment_ReturnsFreshSlices(t *testing.T) {
	a := FallbackJudgment("x")
	a.Categories[0] = "mutated"

	b := FallbackJudgment("x")
	assert.Equal(t, domain.CategoryUnclassified, b.Categories[0])
}
