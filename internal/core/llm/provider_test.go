package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/platform/config"
)

func TestSelectProvider(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.LLMConfig
		local bool
		want  ProviderName
	}{
		{"local without key uses mock", config.LLMConfig{Provider: "anthropic"}, true, ProviderMock},
		{"local openai without key uses mock", config.LLMConfig{Provider: "openai"}, true, ProviderMock},
		{"local with key keeps provider", config.LLMConfig{Provider: "anthropic", AnthropicAPIKey: "sk"}, true, ProviderAnthropic},
		{"production without key keeps provider", config.LLMConfig{Provider: "anthropic"}, false, ProviderAnthropic},
		{"explicit mock", config.LLMConfig{Provider: "mock"}, false, ProviderMock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := SelectProvider(tt.cfg, tt.local, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestSelectProvider_UnknownProvider(t *testing.T) {
	_, err := SelectProvider(config.LLMConfig{Provider: "bard"}, true, nil)

	assert.ErrorIs(t, err, coreerrors.ErrProviderNotConfigured)
}

func TestProviders_RateLimiterFailureIsRateLimited(t *testing.T) {
	// A zero burst makes every Wait fail immediately.
	blocked := rate.NewLimiter(1, 0)

	anthropicP := NewAnthropicProvider(config.LLMConfig{AnthropicAPIKey: "sk"}, nil)
	anthropicP.rateLimiter = blocked

	openaiP := NewOpenAIProvider(config.LLMConfig{OpenAIAPIKey: "sk"}, nil)
	openaiP.rateLimiter = blocked

	for _, p := range []Provider{anthropicP, openaiP} {
		t.Run(string(p.Name()), func(t *testing.T) {
			_, err := p.Complete(context.Background(), CompletionRequest{Prompt: "hi"})

			assert.ErrorIs(t, err, coreerrors.ErrRateLimited)
		})
	}
}

func TestJudge_RateLimitedIsRetried(t *testing.T) {
	limited := errors.Join(coreerrors.ErrRateLimited, errors.New("would exceed context deadline"))
	p := &scriptedProvider{available: true, responses: []func(context.Context) (Completion, error){
		fail(limited),
		reply(validJudgmentJSON),
	}}
	j, rec := newTestJudge(p, JudgeConfig{MaxAttempts: 3})

	got := j.Judge(context.Background(), JudgeRequest{Text: "export is broken"})

	assert.False(t, got.Fallback)
	assert.Equal(t, int32(2), p.callCount.Load())
	assert.Len(t, rec.delays, 1)
}
