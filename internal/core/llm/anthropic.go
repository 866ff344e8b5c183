package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/platform/config"
)

// anthropicProvider implements the Provider interface for Anthropic Claude.
type anthropicProvider struct {
	apiKey      string
	model       string
	client      anthropic.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
}

// NewAnthropicProvider creates a new Anthropic LLM provider.
func NewAnthropicProvider(cfg config.LLMConfig, logger *zerolog.Logger) *anthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))

	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	return &anthropicProvider{
		apiKey:      cfg.AnthropicAPIKey,
		model:       model,
		client:      client,
		logger:      logger,
		rateLimiter: newRateLimiter(cfg.RateLimitRPS),
	}
}

// Name returns the provider identifier.
func (p *anthropicProvider) Name() ProviderName {
	return ProviderAnthropic
}

// IsAvailable returns true if the provider is configured and available.
func (p *anthropicProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Model returns the configured Claude model.
func (p *anthropicProvider) Model() string {
	return p.model
}

// Complete implements Provider interface.
func (p *anthropicProvider) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return Completion{}, fmt.Errorf(errRateLimiter, coreerrors.ErrRateLimited, err)
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   req.MaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		RecordTokenUsage(string(ProviderAnthropic), p.model, 0, 0, false)

		return Completion{}, fmt.Errorf(errAnthropicCompletion, classifyAnthropicError(err))
	}

	RecordTokenUsage(string(ProviderAnthropic), p.model, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens), true)

	text := strings.TrimSpace(extractTextFromResponse(resp))
	if text == "" {
		return Completion{}, coreerrors.ErrEmptyResponse
	}

	return Completion{
		Text:             text,
		Model:            p.model,
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}

// classifyAnthropicError tags credential failures so the judge stops retrying.
func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && isAuthStatus(apiErr.StatusCode) {
		return fmt.Errorf("%w: %w", coreerrors.ErrProviderAuth, err)
	}

	return err
}

func extractTextFromResponse(resp *anthropic.Message) string {
	var result strings.Builder

	for _, block := range resp.Content {
		if block.Type == contentTypeText {
			result.WriteString(block.Text)
		}
	}

	return result.String()
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

func newRateLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, rateLimiterBurst)
	}

	return rate.NewLimiter(rate.Limit(rps), rateLimiterBurst)
}

// Ensure anthropicProvider implements Provider interface.
var _ Provider = (*anthropicProvider)(nil)
