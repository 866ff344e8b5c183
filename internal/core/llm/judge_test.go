package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
)

const validJudgmentJSON = `{
  "sentiment": "negative",
  "sentiment_score": -0.8,
  "categories": ["bug", "complaint"],
  "themes": ["reliability"],
  "insights": {"summary": "Export is broken", "churn_risk": true, "competitor_mentions": ["Zendesk"]},
  "confidence": 0.9
}`

var errNetwork = errors.New("connection reset by peer")

// scriptedProvider replays one response per call and repeats the last one.
type scriptedProvider struct {
	available bool
	callCount atomic.Int32
	responses []func(ctx context.Context) (Completion, error)
}

func (p *scriptedProvider) Name() ProviderName { return "scripted" }
func (p *scriptedProvider) IsAvailable() bool  { return p.available }
func (p *scriptedProvider) Model() string      { return "scripted-model" }

func (p *scriptedProvider) Complete(ctx context.Context, _ CompletionRequest) (Completion, error) {
	n := int(p.callCount.Add(1)) - 1
	if n >= len(p.responses) {
		n = len(p.responses) - 1
	}

	return p.responses[n](ctx)
}

func reply(text string) func(context.Context) (Completion, error) {
	return func(context.Context) (Completion, error) {
		return Completion{Text: text, Model: "scripted-model"}, nil
	}
}

func fail(err error) func(context.Context) (Completion, error) {
	return func(context.Context) (Completion, error) {
		return Completion{}, err
	}
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()

	return ctx.Err()
}

func newTestJudge(p Provider, cfg JudgeConfig) (*Judge, *sleepRecorder) {
	j := NewJudge(p, cfg, nil)
	rec := &sleepRecorder{}
	j.sleep = rec.sleep

	return j, rec
}

func TestJudge_SuccessFirstAttempt(t *testing.T) {
	p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){reply(validJudgmentJSON)}}
	j, rec := newTestJudge(p, JudgeConfig{})

	got := j.Judge(context.Background(), JudgeRequest{Text: "export broken"})

	assert.False(t, got.Fallback)
	assert.Equal(t, domain.SentimentNegative, got.Sentiment)
	assert.InDelta(t, -0.8, got.SentimentScore, 1e-9)
	assert.Equal(t, []string{"bug", "complaint"}, got.Categories)
	assert.True(t, got.Insights.ChurnRisk)
	assert.Equal(t, []string{"Zendesk"}, got.Insights.CompetitorMentions)
	assert.Equal(t, "scripted-model", got.Model)
	assert.Equal(t, int32(1), p.callCount.Load())
	assert.Empty(t, rec.delays)
}

func TestJudge_RetriesTransientThenSucceeds(t *testing.T) {
	p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){
		fail(errNetwork),
		reply("not json at all"),
		reply("```json\n" + validJudgmentJSON + "\n```"),
	}}
	j, rec := newTestJudge(p, JudgeConfig{MaxAttempts: 3, BackoffBase: 100 * time.Millisecond, BackoffMax: time.Second})

	got := j.Judge(context.Background(), JudgeRequest{Text: "export broken"})

	assert.False(t, got.Fallback)
	assert.Equal(t, int32(3), p.callCount.Load())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.delays)
}

func TestJudge_StopsAfterMaxAttempts(t *testing.T) {
	p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){fail(errNetwork)}}
	j, rec := newTestJudge(p, JudgeConfig{MaxAttempts: 3})

	got := j.Judge(context.Background(), JudgeRequest{Text: "this is great"})

	assert.True(t, got.Fallback)
	assert.Equal(t, FallbackConfidence, got.Confidence)
	assert.Equal(t, int32(3), p.callCount.Load())
	assert.Len(t, rec.delays, 2)
}

func TestJudge_MissingFieldTriggersRetryAndFallback(t *testing.T) {
	p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){
		reply(`{"sentiment":"positive","sentiment_score":0.5,"categories":[],"themes":[],"insights":{}}`),
	}}
	j, _ := newTestJudge(p, JudgeConfig{MaxAttempts: 2})

	got := j.Judge(context.Background(), JudgeRequest{Text: "fine"})

	assert.True(t, got.Fallback)
	assert.Equal(t, int32(2), p.callCount.Load())
}

func TestJudge_NonTransientErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth", fmt.Errorf("anthropic messages: %w", coreerrors.ErrProviderAuth)},
		{"not configured", coreerrors.ErrProviderNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){fail(tt.err)}}
			j, rec := newTestJudge(p, JudgeConfig{MaxAttempts: 3})

			got := j.Judge(context.Background(), JudgeRequest{Text: "hello"})

			assert.True(t, got.Fallback)
			assert.Equal(t, int32(1), p.callCount.Load())
			assert.Empty(t, rec.delays)
		})
	}
}

func TestJudge_UnavailableProviderIsNeverCalled(t *testing.T) {
	p := &scriptedProvider{available: false, responses: []func(context.Context) (Completion, error){reply(validJudgmentJSON)}}
	j, _ := newTestJudge(p, JudgeConfig{})

	got := j.Judge(context.Background(), JudgeRequest{Text: "terrible and broken"})

	assert.True(t, got.Fallback)
	assert.Equal(t, domain.SentimentNegative, got.Sentiment)
	assert.Zero(t, p.callCount.Load())
}

func TestJudge_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){fail(errNetwork)}}
	j, _ := newTestJudge(p, JudgeConfig{MaxAttempts: 1, CircuitThreshold: 2, CircuitTimeout: time.Hour})

	for i := 0; i < 2; i++ {
		j.Judge(context.Background(), JudgeRequest{Text: "x"})
	}

	require.Equal(t, int32(2), p.callCount.Load())

	got := j.Judge(context.Background(), JudgeRequest{Text: "x"})

	assert.True(t, got.Fallback)
	assert.Equal(t, int32(2), p.callCount.Load(), "open breaker must short-circuit the provider")
}

func TestJudge_CancelledContextYieldsFallback(t *testing.T) {
	p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){
		func(ctx context.Context) (Completion, error) {
			<-ctx.Done()

			return Completion{}, ctx.Err()
		},
	}}
	j, _ := newTestJudge(p, JudgeConfig{MaxAttempts: 3})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got := j.Judge(ctx, JudgeRequest{Text: "love it"})

	assert.True(t, got.Fallback)
	assert.Equal(t, domain.SentimentPositive, got.Sentiment)
	assert.Equal(t, int32(1), p.callCount.Load())
}

func TestJudge_AttemptTimeoutIsRetried(t *testing.T) {
	p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){
		func(ctx context.Context) (Completion, error) {
			<-ctx.Done()

			return Completion{}, ctx.Err()
		},
		reply(validJudgmentJSON),
	}}
	j, _ := newTestJudge(p, JudgeConfig{MaxAttempts: 2, AttemptTimeout: 10 * time.Millisecond})

	got := j.Judge(context.Background(), JudgeRequest{Text: "x"})

	assert.False(t, got.Fallback)
	assert.Equal(t, int32(2), p.callCount.Load())
}

func TestJudge_FallbackIsDeterministic(t *testing.T) {
	p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){fail(errNetwork)}}
	j, _ := newTestJudge(p, JudgeConfig{MaxAttempts: 2, CircuitThreshold: 1000})

	text := "The dashboard is awful and the export is broken"
	first := j.Judge(context.Background(), JudgeRequest{Text: text})

	for i := 0; i < 5; i++ {
		again := j.Judge(context.Background(), JudgeRequest{Text: text})
		assert.Equal(t, first.Sentiment, again.Sentiment)
		assert.Equal(t, first.SentimentScore, again.SentimentScore)
	}

	assert.Equal(t, domain.SentimentNegative, first.Sentiment)
}

func TestJudge_Backoff(t *testing.T) {
	j := NewJudge(NewMockProvider(), JudgeConfig{BackoffBase: 500 * time.Millisecond, BackoffMax: 5 * time.Second}, nil)

	want := []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		4 * time.Second,
		5 * time.Second,
		5 * time.Second,
	}

	for i, w := range want {
		assert.Equal(t, w, j.backoff(i+1), "attempt %d", i+1)
	}
}

func TestJudge_WithMockProvider(t *testing.T) {
	j := NewJudge(NewMockProvider(), JudgeConfig{}, nil)

	got := j.Judge(context.Background(), JudgeRequest{Text: "I love the new editor but sync is broken"})

	assert.False(t, got.Fallback)
	assert.Equal(t, domain.SentimentMixed, got.Sentiment)
	assert.ElementsMatch(t, []string{"complaint", "praise"}, got.Categories)
	assert.Equal(t, mockModel, got.Model)
}
