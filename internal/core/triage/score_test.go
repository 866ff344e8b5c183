package triage

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inovaitive/revu/internal/core/domain"
)

func ptr[T any](v T) *T {
	return &v
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestCalculatePriorityScore_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		in          ScoreInput
		wantScore   int
		wantUrgency domain.Urgency
	}{
		{
			name: "angry churning customer caps at 100",
			in: ScoreInput{
				SentimentScore:  -0.8,
				UrgencyKeywords: []string{"urgent", "critical"},
				ChurnRisk:       true,
				Rating:          ptr(1.5),
				FeedbackDate:    ptr(fixedNow),
				Now:             fixedNow,
			},
			wantScore:   100,
			wantUrgency: domain.UrgencyCritical,
		},
		{
			name:        "happy customer with nothing else",
			in:          ScoreInput{SentimentScore: 0.6, Now: fixedNow},
			wantScore:   5,
			wantUrgency: domain.UrgencyLow,
		},
		{
			name: "competitor mention with mild sentiment",
			in: ScoreInput{
				SentimentScore:     -0.2,
				CompetitorMentions: []string{"zendesk"},
				Rating:             ptr(3.2),
				FeedbackDate:       ptr(fixedNow.Add(-10 * 24 * time.Hour)),
				Now:                fixedNow,
			},
			// 15 + 15 + 4 + 5
			wantScore:   39,
			wantUrgency: domain.UrgencyMedium,
		},
		{
			name: "three keywords trigger the keyword boost",
			in: ScoreInput{
				SentimentScore:  -0.5,
				UrgencyKeywords: []string{"broken", "down", "crash"},
				Now:             fixedNow,
			},
			// 25 + 30 + 5
			wantScore:   60,
			wantUrgency: domain.UrgencyHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := CalculatePriorityScore(tt.in)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantUrgency, CategorizeUrgency(score))
		})
	}
}

func TestBreakdown_ScenarioOneBuckets(t *testing.T) {
	b := Breakdown(ScoreInput{
		SentimentScore:  -0.8,
		UrgencyKeywords: []string{"urgent", "critical"},
		ChurnRisk:       true,
		Rating:          ptr(1.5),
		FeedbackDate:    ptr(fixedNow),
		Now:             fixedNow,
	})

	assert.Equal(t, ScoreBreakdown{
		Sentiment: 30,
		Urgency:   20,
		Churn:     25,
		Rating:    10,
		Recency:   10,
		Boost:     10,
	}, b)
	assert.Equal(t, 105, b.Total())
	assert.Equal(t, 100, b.Score())
}

func TestSentimentPoints_Thresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{-1.0, 30},
		{-0.7, 30},
		{-0.69, 25},
		{-0.4, 25},
		{-0.39, 15},
		{-0.1, 15},
		{-0.09, 10},
		{0.1, 10},
		{0.11, 5},
		{1.0, 5},
	}

	for _, tt := range tests {
		if got := sentimentPoints(tt.score); got != tt.want {
			t.Errorf("sentimentPoints(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestBreakdown_VeryNegativeSentimentAlwaysThirty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		in := randomInput(rng)
		in.SentimentScore = -0.7 - rng.Float64()*0.3

		assert.Equal(t, 30, Breakdown(in).Sentiment, "input %+v", in)
	}
}

func TestRatingPoints(t *testing.T) {
	tests := []struct {
		rating float64
		want   int
	}{
		{0, 10},
		{1.99, 10},
		{2.0, 7},
		{2.99, 7},
		{3.0, 4},
		{3.49, 4},
		{3.5, 0},
		{5, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ratingPoints(tt.rating), "rating %v", tt.rating)
	}
}

func TestBreakdown_Recency(t *testing.T) {
	day := 24 * time.Hour

	tests := []struct {
		name string
		age  time.Duration
		want int
	}{
		{"same moment", 0, 10},
		{"23 hours ago", 23 * time.Hour, 10},
		{"exactly one day", day, 8},
		{"six days and change", 6*day + 23*time.Hour, 8},
		{"one week", 7 * day, 5},
		{"29 days", 29 * day, 5},
		{"30 days", 30 * day, 2},
		{"89 days", 89 * day, 2},
		{"90 days", 90 * day, 0},
		{"a year", 365 * day, 0},
		{"future by an hour", -time.Hour, 10},
		{"future by a week", -7 * day, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Breakdown(ScoreInput{
				SentimentScore: 0.5,
				FeedbackDate:   ptr(fixedNow.Add(-tt.age)),
				Now:            fixedNow,
			})
			assert.Equal(t, tt.want, b.Recency)
		})
	}
}

func TestBreakdown_AbsentOptionalsContributeNothing(t *testing.T) {
	b := Breakdown(ScoreInput{SentimentScore: 0, Now: fixedNow})

	assert.Zero(t, b.Rating)
	assert.Zero(t, b.Recency)
	assert.Zero(t, b.Churn)
	assert.Zero(t, b.Competitor)
	assert.Zero(t, b.Boost)
}

func TestBreakdown_Boosts(t *testing.T) {
	tests := []struct {
		name      string
		sentiment float64
		churn     bool
		keywords  int
		want      int
	}{
		{"churn with sentiment just above threshold", -0.5, true, 0, 0},
		{"churn with negative sentiment", -0.51, true, 0, 10},
		{"negative sentiment without churn", -0.9, false, 0, 0},
		{"two keywords", 0, false, 2, 0},
		{"three keywords", 0, false, 3, 5},
		{"both boosts", -0.9, true, 5, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Breakdown(ScoreInput{
				SentimentScore:  tt.sentiment,
				ChurnRisk:       tt.churn,
				UrgencyKeywords: make([]string, tt.keywords),
				Now:             fixedNow,
			})
			assert.Equal(t, tt.want, b.Boost)
		})
	}
}

func TestBreakdown_UrgencyCountsDuplicates(t *testing.T) {
	b := Breakdown(ScoreInput{UrgencyKeywords: []string{"urgent", "urgent"}, Now: fixedNow})
	assert.Equal(t, 20, b.Urgency)

	b = Breakdown(ScoreInput{UrgencyKeywords: make([]string, 7), Now: fixedNow})
	assert.Equal(t, 30, b.Urgency)
}

func TestCalculatePriorityScore_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		in := randomInput(rng)
		score := CalculatePriorityScore(in)

		require.GreaterOrEqual(t, score, 0, "input %+v", in)
		require.LessOrEqual(t, score, MaxPriorityScore, "input %+v", in)
	}
}

func TestCalculatePriorityScore_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 200; i++ {
		in := randomInput(rng)
		assert.Equal(t, CalculatePriorityScore(in), CalculatePriorityScore(in))
	}
}

func TestCalculatePriorityScore_MonotonicInKeywordCount(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 300; i++ {
		in := randomInput(rng)
		prev := -1

		for n := 0; n <= 6; n++ {
			in.UrgencyKeywords = make([]string, n)
			score := CalculatePriorityScore(in)
			require.GreaterOrEqual(t, score, prev, "keywords=%d input %+v", n, in)
			prev = score
		}
	}
}

func TestElapsedDays_TruncatesTowardZero(t *testing.T) {
	assert.Equal(t, 0, ElapsedDays(fixedNow, fixedNow.Add(-23*time.Hour)))
	assert.Equal(t, 2, ElapsedDays(fixedNow, fixedNow.Add(-71*time.Hour)))
	assert.Equal(t, 0, ElapsedDays(fixedNow, fixedNow.Add(5*time.Hour)))
	assert.Equal(t, -1, ElapsedDays(fixedNow, fixedNow.Add(30*time.Hour)))
}

func randomInput(rng *rand.Rand) ScoreInput {
	in := ScoreInput{
		SentimentScore:  rng.Float64()*2 - 1,
		UrgencyKeywords: make([]string, rng.Intn(6)),
		ChurnRisk:       rng.Intn(2) == 0,
		Now:             fixedNow,
	}

	if rng.Intn(2) == 0 {
		in.CompetitorMentions = []string{"hubspot"}
	}

	if rng.Intn(2) == 0 {
		in.Rating = ptr(rng.Float64() * 5)
	}

	if rng.Intn(2) == 0 {
		offset := time.Duration(rng.Int63n(int64(200*24*time.Hour))) - 10*24*time.Hour
		in.FeedbackDate = ptr(fixedNow.Add(-offset))
	}

	return in
}
