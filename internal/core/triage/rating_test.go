package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentimentFromRating(t *testing.T) {
	assert.InDelta(t, 1.0, SentimentFromRating(ptr(5.0)), 1e-9)
	assert.InDelta(t, -1.0, SentimentFromRating(ptr(0.0)), 1e-9)
	assert.InDelta(t, 0.0, SentimentFromRating(ptr(2.5)), 1e-9)
	assert.InDelta(t, 0.2, SentimentFromRating(ptr(3.0)), 1e-9)
	assert.Zero(t, SentimentFromRating(nil))
}

func TestRatingDisagrees(t *testing.T) {
	tests := []struct {
		name      string
		rating    *float64
		sentiment float64
		want      bool
	}{
		{"no rating", nil, -0.9, false},
		{"same direction", ptr(1.0), -0.8, false},
		{"opposite but close", ptr(3.0), -0.3, false},
		{"five stars with angry text", ptr(5.0), -0.6, true},
		{"one star with glowing text", ptr(0.5), 0.9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RatingDisagrees(tt.rating, tt.sentiment))
		})
	}
}
