package domain

// Sentiment is the coarse sentiment label assigned to feedback.
type Sentiment string

// Sentiment labels.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

// Valid reports whether s is one of the known sentiment labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed:
		return true
	default:
		return false
	}
}

// Urgency is the tier derived from a priority score.
type Urgency string

// Urgency tiers, lowest first.
const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Valid reports whether u is one of the known urgency tiers.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	default:
		return false
	}
}

// Well-known category tags.
const (
	CategoryBug            = "bug"
	CategoryFeatureRequest = "feature_request"
	CategoryComplaint      = "complaint"
	CategoryPraise         = "praise"
	CategoryQuestion       = "question"
	CategoryIntegration    = "integration_issue"
	CategoryUsability      = "usability"
	CategoryPerformance    = "performance"
	CategoryUnclassified   = "unclassified"
)

// Insights is the structured part of an AI judgment.
type Insights struct {
	Summary            string   `json:"summary"`
	KeyPoints          []string `json:"key_points"`
	ActionItems        []string `json:"action_items"`
	ChurnRisk          bool     `json:"churn_risk"`
	ChurnIndicators    []string `json:"churn_indicators"`
	CompetitorMentions []string `json:"competitor_mentions"`
	FeatureRequests    []string `json:"feature_requests"`
	ReviewNotes        string   `json:"review_notes,omitempty"`
}

func (i Insights) clone() Insights {
	i.KeyPoints = cloneStrings(i.KeyPoints)
	i.ActionItems = cloneStrings(i.ActionItems)
	i.ChurnIndicators = cloneStrings(i.ChurnIndicators)
	i.CompetitorMentions = cloneStrings(i.CompetitorMentions)
	i.FeatureRequests = cloneStrings(i.FeatureRequests)

	return i
}

// Judgment is the AI's structured assessment of one feedback text.
type Judgment struct {
	Sentiment      Sentiment
	SentimentScore float64
	Categories     []string
	Themes         []string
	Insights       Insights
	Confidence     float64

	// Fallback is set when the judgment was produced without the AI provider.
	Fallback bool
	// Model identifies what produced the judgment.
	Model string
}
