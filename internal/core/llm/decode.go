package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
)

// judgmentPayload mirrors the JSON the model is asked for. Pointers mark
// required fields so absence can be told apart from zero values.
type judgmentPayload struct {
	Sentiment      *string          `json:"sentiment"`
	SentimentScore *float64         `json:"sentiment_score"`
	Categories     *[]string        `json:"categories"`
	Themes         *[]string        `json:"themes"`
	Insights       *domain.Insights `json:"insights"`
	Confidence     *float64         `json:"confidence"`
}

// DecodeJudgment parses model output into a validated judgment. Any missing
// required field, unknown sentiment label or out-of-range number is an error
// wrapping ErrMalformedJudgment.
func DecodeJudgment(raw string) (domain.Judgment, error) {
	body := extractJSON(stripCodeFence(raw))

	var p judgmentPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return domain.Judgment{}, fmt.Errorf("%w: %w", coreerrors.ErrMalformedJudgment, err)
	}

	if err := p.checkRequired(); err != nil {
		return domain.Judgment{}, err
	}

	sentiment := domain.Sentiment(strings.ToLower(strings.TrimSpace(*p.Sentiment)))
	if !sentiment.Valid() {
		return domain.Judgment{}, fmt.Errorf("%w: unknown sentiment %q", coreerrors.ErrMalformedJudgment, *p.Sentiment)
	}

	if *p.SentimentScore < -1 || *p.SentimentScore > 1 {
		return domain.Judgment{}, fmt.Errorf("%w: sentiment_score %v out of range", coreerrors.ErrMalformedJudgment, *p.SentimentScore)
	}

	if *p.Confidence < 0 || *p.Confidence > 1 {
		return domain.Judgment{}, fmt.Errorf("%w: confidence %v out of range", coreerrors.ErrMalformedJudgment, *p.Confidence)
	}

	return domain.Judgment{
		Sentiment:      sentiment,
		SentimentScore: *p.SentimentScore,
		Categories:     domain.NormalizeTags(*p.Categories),
		Themes:         nonNil(*p.Themes),
		Insights:       normalizeInsights(*p.Insights),
		Confidence:     *p.Confidence,
	}, nil
}

func (p judgmentPayload) checkRequired() error {
	missing := func(field string) error {
		return fmt.Errorf("%w: missing required field %q", coreerrors.ErrMalformedJudgment, field)
	}

	switch {
	case p.Sentiment == nil:
		return missing("sentiment")
	case p.SentimentScore == nil:
		return missing("sentiment_score")
	case p.Categories == nil:
		return missing("categories")
	case p.Themes == nil:
		return missing("themes")
	case p.Insights == nil:
		return missing("insights")
	case p.Confidence == nil:
		return missing("confidence")
	}

	return nil
}

func normalizeInsights(in domain.Insights) domain.Insights {
	in.KeyPoints = nonNil(in.KeyPoints)
	in.ActionItems = nonNil(in.ActionItems)
	in.ChurnIndicators = nonNil(in.ChurnIndicators)
	in.CompetitorMentions = nonNil(in.CompetitorMentions)
	in.FeatureRequests = nonNil(in.FeatureRequests)
	in.ReviewNotes = ""

	return in
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
		text = text[nl+1:]
	}

	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

// extractJSON tries to extract a JSON object from a response that might have extra text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
