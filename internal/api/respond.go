package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) //nolint:errcheck // client went away
}

// writeError maps sentinel errors to status codes. Anything unrecognized is
// logged and reported as a 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)

	if status == http.StatusInternalServerError {
		s.requestLogger(r).Error().Err(err).Msg("request failed")
		writeJSON(w, status, errorBody{Error: msg})

		return
	}

	writeJSON(w, status, errorBody{Error: msg, Detail: errorDetail(err)})
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, coreerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, coreerrors.ErrFeedbackNotFound):
		return http.StatusNotFound, coreerrors.ErrFeedbackNotFound.Error()
	case errors.Is(err, coreerrors.ErrAnalysisNotFound):
		return http.StatusNotFound, coreerrors.ErrAnalysisNotFound.Error()
	case errors.Is(err, coreerrors.ErrInvalidReview):
		return http.StatusUnprocessableEntity, coreerrors.ErrInvalidReview.Error()
	case errors.Is(err, coreerrors.ErrInvalidID):
		return http.StatusBadRequest, coreerrors.ErrInvalidID.Error()
	case errors.Is(err, coreerrors.ErrInvalidInput):
		return http.StatusBadRequest, coreerrors.ErrInvalidInput.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// errorDetail strips wrapping prefixes so clients see the field level message.
func errorDetail(err error) string {
	lines := strings.Split(err.Error(), "\n")
	for i, l := range lines {
		if idx := strings.LastIndex(l, ": "); idx >= 0 {
			lines[i] = l[idx+2:]
		}
	}

	return strings.Join(lines, "; ")
}

func (s *Server) requestLogger(r *http.Request) *zerolog.Logger {
	route := r.URL.Path
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			route = tpl
		}
	}

	l := s.logger.With().Str(logFieldRoute, route).Str("method", r.Method).Logger()

	return &l
}

type feedbackResponse struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	Source         string          `json:"source"`
	Content        string          `json:"content"`
	AuthorName     string          `json:"author_name,omitempty"`
	AuthorEmail    string          `json:"author_email,omitempty"`
	Rating         *float64        `json:"rating"`
	FeedbackDate   *time.Time      `json:"feedback_date"`
	RawMetadata    json.RawMessage `json:"raw_metadata,omitempty"`
	IngestedAt     time.Time       `json:"ingested_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toFeedbackResponse(f *domain.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:             f.ID,
		OrganizationID: f.OrganizationID,
		Source:         f.Source,
		Content:        f.Content,
		AuthorName:     f.AuthorName,
		AuthorEmail:    f.AuthorEmail,
		Rating:         f.Rating,
		FeedbackDate:   f.FeedbackDate,
		RawMetadata:    json.RawMessage(f.RawMetadata),
		IngestedAt:     f.IngestedAt,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

type analysisResponse struct {
	ID                 string           `json:"id"`
	FeedbackID         string           `json:"feedback_id"`
	Sentiment          domain.Sentiment `json:"sentiment"`
	SentimentScore     float64          `json:"sentiment_score"`
	Categories         []string         `json:"categories"`
	Themes             []string         `json:"themes"`
	PriorityScore      int              `json:"priority_score"`
	Urgency            domain.Urgency   `json:"urgency"`
	Insights           domain.Insights  `json:"insights"`
	ChurnRisk          bool             `json:"churn_risk"`
	CompetitorMentions []string         `json:"competitor_mentions"`
	ExtractedEntities  domain.Entities  `json:"extracted_entities"`
	ConfidenceScore    float64          `json:"confidence_score"`
	RequiresReview     bool             `json:"requires_review"`
	ReviewedBy         *string          `json:"reviewed_by"`
	ReviewedAt         *time.Time       `json:"reviewed_at"`
	AIModelVersion     string           `json:"ai_model_version"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func toAnalysisResponse(a *domain.Analysis) analysisResponse {
	resp := analysisResponse{
		ID:                 a.ID,
		FeedbackID:         a.FeedbackID,
		Sentiment:          a.Sentiment,
		SentimentScore:     a.SentimentScore,
		Categories:         nonNil(a.Categories),
		Themes:             nonNil(a.Themes),
		PriorityScore:      a.PriorityScore,
		Urgency:            a.Urgency,
		Insights:           a.Insights,
		ChurnRisk:          a.ChurnRisk,
		CompetitorMentions: nonNil(a.CompetitorMentions),
		ExtractedEntities:  a.ExtractedEntities,
		ConfidenceScore:    a.ConfidenceScore,
		RequiresReview:     a.RequiresReview,
		ReviewedAt:         a.ReviewedAt,
		AIModelVersion:     a.AIModelVersion,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.ReviewedBy != "" {
		reviewer := a.ReviewedBy
		resp.ReviewedBy = &reviewer
	}

	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
