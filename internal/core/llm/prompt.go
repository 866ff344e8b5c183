package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inovaitive/revu/internal/core/domain"
)

const unknownValue = "Unknown"

const judgmentInstructions = `Respond with a single JSON object and nothing else (no markdown):
{
  "sentiment": "positive|negative|neutral|mixed",
  "sentiment_score": <float from -1.0 (very negative) to 1.0 (very positive)>,
  "categories": [<zero or more of "bug", "feature_request", "complaint", "praise", "question", "integration_issue", "usability", "performance">],
  "themes": [<short themes such as "pricing", "onboarding", "reliability">],
  "insights": {
    "summary": "<one or two sentence summary>",
    "key_points": [<2-4 key points>],
    "action_items": [<1-3 concrete recommendations>],
    "churn_risk": <true if the customer shows intent to leave>,
    "churn_indicators": [<phrases supporting churn_risk, empty otherwise>],
    "competitor_mentions": [<competitor names mentioned>],
    "feature_requests": [<specific features requested>]
  },
  "confidence": <float from 0.0 to 1.0>
}

Guidelines:
- Report high confidence (above 0.8) only for clear, unambiguous feedback.
- Report confidence below 0.7 for vague or contradictory feedback.
- Treat words like "critical", "urgent" and "blocking" as urgency.
- Treat "cancel", "switch to" and competitor names as churn signals.
- Take the rating into account when one is given.`

// JudgeRequest is the feedback and context passed to the AI judge.
type JudgeRequest struct {
	Text    string
	Author  string
	Source  string
	Rating  *float64
	Signals *domain.NLPSignals
}

// BuildPrompt renders the analysis prompt for one feedback item.
func BuildPrompt(req JudgeRequest) string {
	var sb strings.Builder

	sb.WriteString("You analyze customer feedback for a B2B SaaS product team. ")
	sb.WriteString("Assess the feedback below and return structured, actionable insights.\n\n")
	sb.WriteString(feedbackPromptStart)
	sb.WriteString(req.Text)
	sb.WriteString(feedbackPromptEnd)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("- Author: %s\n", orUnknown(req.Author)))
	sb.WriteString(fmt.Sprintf("- Source: %s\n", orUnknown(req.Source)))

	if req.Rating != nil {
		sb.WriteString(fmt.Sprintf("- Rating: %s/5.0\n", strconv.FormatFloat(*req.Rating, 'f', -1, 64)))
	} else {
		sb.WriteString("- Rating: Not provided\n")
	}

	if s := req.Signals; s != nil {
		writeList(&sb, "Organizations", s.Entities.Organizations)
		writeList(&sb, "Products", s.Entities.Products)
		writeList(&sb, "People", s.Entities.Persons)
		writeList(&sb, "Urgency keywords", s.UrgencyKeywords)
		writeList(&sb, "Churn keywords", s.ChurnKeywords)
		writeList(&sb, "Competitors", s.CompetitorMentions)
	}

	sb.WriteString("\n")
	sb.WriteString(judgmentInstructions)

	return sb.String()
}

func writeList(sb *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("- %s: %s\n", label, strings.Join(values, ", ")))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}

	return s
}
