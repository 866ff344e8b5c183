package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/gorilla/mux"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/ingest/csvimport"
	"github.com/inovaitive/revu/internal/platform/observability"
)

type createFeedbackRequest struct {
	Source       string          `json:"source"`
	Content      string          `json:"content"`
	AuthorName   string          `json:"author_name"`
	AuthorEmail  string          `json:"author_email"`
	Rating       *float64        `json:"rating"`
	FeedbackDate string          `json:"feedback_date"`
	RawMetadata  json.RawMessage `json:"raw_metadata"`
}

// POST /feedback
func (s *Server) createFeedback(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	var req createFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	fb := domain.Feedback{
		OrganizationID: p.OrganizationID,
		Source:         strings.TrimSpace(req.Source),
		Content:        strings.TrimSpace(req.Content),
		AuthorName:     strings.TrimSpace(req.AuthorName),
		AuthorEmail:    strings.TrimSpace(req.AuthorEmail),
		Rating:         req.Rating,
	}

	if len(req.RawMetadata) > 0 && string(req.RawMetadata) != "null" {
		fb.RawMetadata = req.RawMetadata
	}

	if req.FeedbackDate == "" {
		now := s.now()
		fb.FeedbackDate = &now
	} else {
		t, err := dateparse.ParseAny(req.FeedbackDate)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: feedback_date %q", coreerrors.ErrInvalidInput, req.FeedbackDate))

			return
		}

		fb.FeedbackDate = &t
	}

	if err := fb.Validate(); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.feedback.CreateFeedback(r.Context(), &fb); err != nil {
		s.writeError(w, r, err)

		return
	}

	observability.FeedbackIngested.WithLabelValues(fb.Source).Inc()
	writeJSON(w, http.StatusCreated, toFeedbackResponse(&fb))
}

// GET /feedback/{feedbackID}
func (s *Server) getFeedback(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	id := mux.Vars(r)["feedbackID"]
	if err := validateID(id); err != nil {
		s.writeError(w, r, err)

		return
	}

	fb, err := s.feedback.FindFeedback(r.Context(), p.OrganizationID, id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponse(fb))
}

// DELETE /feedback/{feedbackID}
func (s *Server) deleteFeedback(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	id := mux.Vars(r)["feedbackID"]
	if err := validateID(id); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.feedback.DeleteFeedback(r.Context(), p.OrganizationID, id); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /feedback/batch with a text/csv body.
func (s *Server) uploadCSV(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "text/csv") && !strings.HasPrefix(ct, "application/csv") {
		s.writeError(w, r, fmt.Errorf("%w: expected a text/csv body, got %q", coreerrors.ErrInvalidInput, ct))

		return
	}

	res, err := s.importer.Import(r.Context(), p.OrganizationID, http.MaxBytesReader(w, r.Body, maxCSVBody))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.requestLogger(r).Info().
		Str("organization_id", p.OrganizationID).
		Int("imported", res.SuccessCount).
		Int("errors", res.ErrorCount).
		Msg("csv upload processed")

	writeJSON(w, http.StatusOK, res)
}

// GET /feedback/template
func (s *Server) csvTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="feedback_template.csv"`)

	if err := csvimport.WriteTemplate(w); err != nil {
		s.requestLogger(r).Error().Err(err).Msg("write csv template")
	}
}
