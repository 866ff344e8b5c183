package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/platform/config"
)

// ProviderName identifies an LLM provider.
type ProviderName string

// Provider name constants.
const (
	ProviderAnthropic ProviderName = "anthropic"
	ProviderOpenAI    ProviderName = "openai"
	ProviderMock      ProviderName = "mock"
)

// CompletionRequest is a single prompt sent to a provider.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int64
	Temperature float64
}

// Completion is the raw text a provider returned.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// IsAvailable returns true if the provider is configured and available.
	IsAvailable() bool

	// Model returns the model tag recorded on analyses.
	Model() string

	// Complete sends the prompt and returns the raw response text.
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// NewProvider builds the provider selected by cfg.Provider. A provider
// without credentials is still returned; it reports IsAvailable false and
// the judge falls back without calling it.
func NewProvider(cfg config.LLMConfig, logger *zerolog.Logger) (Provider, error) {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	switch cfg.Provider {
	case string(ProviderAnthropic):
		return NewAnthropicProvider(cfg, logger), nil
	case string(ProviderOpenAI):
		return NewOpenAIProvider(cfg, logger), nil
	case string(ProviderMock):
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", coreerrors.ErrProviderNotConfigured, cfg.Provider)
	}
}

// SelectProvider is NewProvider for the running environment. On a local
// machine a provider without credentials is replaced by the mock provider.
func SelectProvider(cfg config.LLMConfig, local bool, logger *zerolog.Logger) (Provider, error) {
	p, err := NewProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	if local && !p.IsAvailable() {
		if logger != nil {
			logger.Warn().Str(logKeyProvider, string(p.Name())).Msg("no AI credentials in local environment, using mock provider")
		}

		return NewMockProvider(), nil
	}

	return p, nil
}
