package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
)

func TestDecodeJudgment_Valid(t *testing.T) {
	raw := "Sure, here you go:\n```json\n" + `{
  "sentiment": " Mixed ",
  "sentiment_score": 0.1,
  "categories": ["Praise", "complaint", "praise", ""],
  "themes": ["UI"],
  "priority_score": 77,
  "urgency": "high",
  "insights": {"summary": "ok", "feature_requests": ["dark mode"]},
  "confidence": 0.65
}` + "\n```"

	got, err := DecodeJudgment(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.SentimentMixed, got.Sentiment)
	assert.Equal(t, []string{"praise", "complaint"}, got.Categories)
	assert.Equal(t, []string{"UI"}, got.Themes)
	assert.Equal(t, "ok", got.Insights.Summary)
	assert.Equal(t, []string{"dark mode"}, got.Insights.FeatureRequests)
	assert.False(t, got.Insights.ChurnRisk)
	assert.NotNil(t, got.Insights.CompetitorMentions)
	assert.NotNil(t, got.Insights.ChurnIndicators)
	assert.InDelta(t, 0.65, got.Confidence, 1e-9)
	assert.False(t, got.Fallback)
}

func TestDecodeJudgment_MissingRequiredFields(t *testing.T) {
	full := map[string]string{
		"sentiment":       `"positive"`,
		"sentiment_score": `0.4`,
		"categories":      `[]`,
		"themes":          `[]`,
		"insights":        `{}`,
		"confidence":      `0.9`,
	}

	for field := range full {
		t.Run(field, func(t *testing.T) {
			var parts []string

			for k, v := range full {
				if k != field {
					parts = append(parts, `"`+k+`":`+v)
				}
			}

			_, err := DecodeJudgment("{" + strings.Join(parts, ",") + "}")
			require.Error(t, err)
			assert.ErrorIs(t, err, coreerrors.ErrMalformedJudgment)
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestDecodeJudgment_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I could not analyze this."},
		{"truncated", `{"sentiment":"positive","sentiment_score":0.4`},
		{"unknown sentiment", `{"sentiment":"ecstatic","sentiment_score":0.4,"categories":[],"themes":[],"insights":{},"confidence":0.9}`},
		{"score too high", `{"sentiment":"positive","sentiment_score":1.4,"categories":[],"themes":[],"insights":{},"confidence":0.9}`},
		{"confidence negative", `{"sentiment":"positive","sentiment_score":0.4,"categories":[],"themes":[],"insights":{},"confidence":-0.1}`},
		{"null categories", `{"sentiment":"positive","sentiment_score":0.4,"categories":null,"themes":[],"insights":{},"confidence":0.9}`},
		{"wrong type", `{"sentiment":"positive","sentiment_score":"high","categories":[],"themes":[],"insights":{},"confidence":0.9}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJudgment(tt.raw)
			assert.ErrorIs(t, err, coreerrors.ErrMalformedJudgment)
		})
	}
}

func TestDecodeJudgment_DropsModelReviewNotes(t *testing.T) {
	got, err := DecodeJudgment(`{"sentiment":"neutral","sentiment_score":0,"categories":[],"themes":[],"insights":{"review_notes":"injected"},"confidence":0.8}`)
	require.NoError(t, err)

	assert.Empty(t, got.Insights.ReviewNotes)
}
