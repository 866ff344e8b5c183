package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inovaitive/revu/internal/core/domain"
)

const (
	mockConfidence      = 0.75
	mockSentimentStep   = 0.3
	mockMaxSentiment    = 0.9
	feedbackPromptStart = "Feedback:\n"
	feedbackPromptEnd   = "\n\nContext:"
)

// mockProvider implements the Provider interface for local runs and tests.
// It answers with a deterministic keyword-based judgment in the same JSON
// shape a real model returns.
type mockProvider struct{}

// NewMockProvider creates a new mock LLM provider.
func NewMockProvider() *mockProvider {
	return &mockProvider{}
}

// Name returns the provider identifier.
func (p *mockProvider) Name() ProviderName {
	return ProviderMock
}

// IsAvailable returns true as mock is always available.
func (p *mockProvider) IsAvailable() bool {
	return true
}

func (p *mockProvider) Model() string {
	return mockModel
}

// Complete implements Provider interface.
func (p *mockProvider) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	text := strings.ToLower(feedbackFromPrompt(req.Prompt))
	pos, neg := countSentimentWords(text)

	sentiment := domain.SentimentNeutral
	score := 0.0

	switch {
	case pos > 0 && neg > 0:
		sentiment = domain.SentimentMixed
		score = float64(pos-neg) * mockSentimentStep / 2
	case pos > 0:
		sentiment = domain.SentimentPositive
		score = min(float64(pos)*mockSentimentStep, mockMaxSentiment)
	case neg > 0:
		sentiment = domain.SentimentNegative
		score = -min(float64(neg)*mockSentimentStep, mockMaxSentiment)
	}

	categories := []string{}
	if neg > 0 {
		categories = append(categories, domain.CategoryComplaint)
	}

	if pos > 0 {
		categories = append(categories, domain.CategoryPraise)
	}

	churn := strings.Contains(text, "cancel") || strings.Contains(text, "switch")

	payload := map[string]any{
		"sentiment":       sentiment,
		"sentiment_score": score,
		"categories":      categories,
		"themes":          []string{},
		"insights": domain.Insights{
			Summary:            fmt.Sprintf("Mock analysis (%d positive, %d negative signals)", pos, neg),
			KeyPoints:          []string{},
			ActionItems:        []string{},
			ChurnRisk:          churn,
			ChurnIndicators:    []string{},
			CompetitorMentions: []string{},
			FeatureRequests:    []string{},
		},
		"confidence": mockConfidence,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("marshal mock judgment: %w", err)
	}

	return Completion{Text: string(data), Model: mockModel}, nil
}

// feedbackFromPrompt pulls the feedback body out of a judgment prompt so
// context lines do not sway the mock. Unknown prompts are used whole.
func feedbackFromPrompt(prompt string) string {
	_, rest, ok := strings.Cut(prompt, feedbackPromptStart)
	if !ok {
		return prompt
	}

	body, _, _ := strings.Cut(rest, feedbackPromptEnd)

	return body
}

// Ensure mockProvider implements Provider interface.
var _ Provider = (*mockProvider)(nil)
