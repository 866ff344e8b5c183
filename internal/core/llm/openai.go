package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/platform/config"
)

type openaiProvider struct {
	apiKey      string
	model       string
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
}

// NewOpenAIProvider creates a provider backed by the OpenAI chat completions API.
func NewOpenAIProvider(cfg config.LLMConfig, logger *zerolog.Logger) *openaiProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &openaiProvider{
		apiKey:      cfg.OpenAIAPIKey,
		model:       model,
		client:      openai.NewClient(cfg.OpenAIAPIKey),
		logger:      logger,
		rateLimiter: newRateLimiter(cfg.RateLimitRPS),
	}
}

func (p *openaiProvider) Name() ProviderName {
	return ProviderOpenAI
}

func (p *openaiProvider) IsAvailable() bool {
	return p.apiKey != ""
}

func (p *openaiProvider) Model() string {
	return p.model
}

func (p *openaiProvider) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return Completion{}, fmt.Errorf(errRateLimiter, coreerrors.ErrRateLimited, err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   int(req.MaxTokens),
		Temperature: float32(req.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		RecordTokenUsage(string(ProviderOpenAI), p.model, 0, 0, false)

		return Completion{}, fmt.Errorf(errOpenAIChatCompletion, classifyOpenAIError(err))
	}

	RecordTokenUsage(string(ProviderOpenAI), p.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, true)

	if len(resp.Choices) == 0 {
		return Completion{}, coreerrors.ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Completion{}, coreerrors.ErrEmptyResponse
	}

	p.logger.Debug().Str(logKeyModel, p.model).Int("chars", len(text)).Msg("LLM response")

	return Completion{
		Text:             text,
		Model:            p.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && isAuthStatus(apiErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %w", coreerrors.ErrProviderAuth, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && isAuthStatus(reqErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %w", coreerrors.ErrProviderAuth, err)
	}

	return err
}

var _ Provider = (*openaiProvider)(nil)
