package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	coreerrors "github.com/inovaitive/revu/internal/core/errors"
)

func TestFeedback_Validate(t *testing.T) {
	rating := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		fb      Feedback
		wantErr bool
	}{
		{"minimal", Feedback{Source: "web", Content: "ok"}, false},
		{"rating at bounds", Feedback{Source: "web", Content: "ok", Rating: rating(5)}, false},
		{"zero rating", Feedback{Source: "web", Content: "ok", Rating: rating(0)}, false},
		{"blank content", Feedback{Source: "web", Content: " \n"}, true},
		{"blank source", Feedback{Source: "", Content: "ok"}, true},
		{"rating above range", Feedback{Source: "web", Content: "ok", Rating: rating(5.01)}, true},
		{"negative rating", Feedback{Source: "web", Content: "ok", Rating: rating(-0.5)}, true},
		{"nan rating", Feedback{Source: "web", Content: "ok", Rating: rating(math.NaN())}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fb.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, coreerrors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalysis_CloneIsDeep(t *testing.T) {
	a := &Analysis{
		Categories:         []string{"bug"},
		CompetitorMentions: []string{"Acme"},
		Insights:           Insights{KeyPoints: []string{"slow"}},
		ExtractedEntities:  Entities{Products: []string{"Export"}},
	}

	c := a.Clone()
	c.Categories[0] = "praise"
	c.CompetitorMentions[0] = "Other"
	c.Insights.KeyPoints[0] = "fast"
	c.ExtractedEntities.Products[0] = "Import"

	assert.Equal(t, "bug", a.Categories[0])
	assert.Equal(t, "Acme", a.CompetitorMentions[0])
	assert.Equal(t, "slow", a.Insights.KeyPoints[0])
	assert.Equal(t, "Export", a.ExtractedEntities.Products[0])
	assert.Nil(t, (*Analysis)(nil).Clone())
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"lower-cased", []string{"Bug", "PRAISE"}, []string{"bug", "praise"}},
		{"duplicates after folding", []string{"bug", " Bug ", "BUG"}, []string{"bug"}},
		{"blanks dropped", []string{" ", "", "question"}, []string{"question"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestAnalysis_IsReviewed(t *testing.T) {
	assert.False(t, (&Analysis{}).IsReviewed())
	assert.True(t, (&Analysis{ReviewedBy: "5f9d1c3a-7e2b-4b8e-8c0a-000000000001"}).IsReviewed())
}
