package domain

import (
	"fmt"
	"strings"
	"time"

	coreerrors "github.com/inovaitive/revu/internal/core/errors"
)

// Rating bounds for feedback scores.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Feedback represents a single piece of customer feedback owned by an organization.
type Feedback struct {
	ID             string
	OrganizationID string
	Source         string
	Content        string
	AuthorName     string
	AuthorEmail    string
	Rating         *float64
	FeedbackDate   *time.Time
	RawMetadata    []byte
	IngestedAt     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the fields a feedback item must carry before it is stored.
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.Content) == "" {
		return fmt.Errorf("%w: content is required", coreerrors.ErrInvalidInput)
	}

	if strings.TrimSpace(f.Source) == "" {
		return fmt.Errorf("%w: source is required", coreerrors.ErrInvalidInput)
	}

	if f.Rating != nil && !ValidRating(*f.Rating) {
		return fmt.Errorf("%w: rating %v outside %v..%v", coreerrors.ErrInvalidInput, *f.Rating, MinRating, MaxRating)
	}

	return nil
}

// ValidRating reports whether r lies within the rating scale. NaN is invalid.
func ValidRating(r float64) bool {
	return r >= MinRating && r <= MaxRating
}

// Analysis is the persisted triage result for a feedback item.
// There is at most one analysis per feedback item.
type Analysis struct {
	ID                 string
	FeedbackID         string
	Sentiment          Sentiment
	SentimentScore     float64
	Categories         []string
	Themes             []string
	PriorityScore      int
	Urgency            Urgency
	Insights           Insights
	ChurnRisk          bool
	CompetitorMentions []string
	ExtractedEntities  Entities
	ConfidenceScore    float64
	RequiresReview     bool
	ReviewedBy         string
	ReviewedAt         *time.Time
	AIModelVersion     string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsReviewed reports whether a human reviewer has acted on the analysis.
func (a *Analysis) IsReviewed() bool {
	return a.ReviewedBy != ""
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}

	c := *a
	c.Categories = cloneStrings(a.Categories)
	c.Themes = cloneStrings(a.Themes)
	c.CompetitorMentions = cloneStrings(a.CompetitorMentions)
	c.Insights = a.Insights.clone()
	c.ExtractedEntities = a.ExtractedEntities.clone()

	if a.ReviewedAt != nil {
		t := *a.ReviewedAt
		c.ReviewedAt = &t
	}

	return &c
}

// ContainsString reports whether list contains s.
func ContainsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

// NormalizeTags lower-cases category tags and drops blanks and duplicates.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))

	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || ContainsString(out, t) {
			continue
		}

		out = append(out, t)
	}

	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}

	out := make([]string, len(in))
	copy(out, in)

	return out
}
