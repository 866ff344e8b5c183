package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/process/analysis"
)

type triggerRequest struct {
	FeedbackID      string `json:"feedback_id"`
	ForceReanalysis bool   `json:"force_reanalysis"`
}

type batchRequest struct {
	FeedbackIDs     []string `json:"feedback_ids"`
	ForceReanalysis bool     `json:"force_reanalysis"`
}

type reviewRequest struct {
	Approved      bool     `json:"approved"`
	Sentiment     *string  `json:"sentiment"`
	Categories    []string `json:"categories"`
	Themes        []string `json:"themes"`
	PriorityScore *int     `json:"priority_score"`
	Urgency       *string  `json:"urgency"`
	Notes         *string  `json:"notes"`
}

// POST /analysis/trigger
func (s *Server) triggerAnalysis(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	var req triggerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := validateID(req.FeedbackID); err != nil {
		s.writeError(w, r, err)

		return
	}

	a, err := s.analyses.Analyze(r.Context(), p.OrganizationID, req.FeedbackID, req.ForceReanalysis)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, toAnalysisResponse(a))
}

// POST /analysis/batch
func (s *Server) batchAnalysis(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	if len(req.FeedbackIDs) > maxBatchIDs {
		s.writeError(w, r, fmt.Errorf("%w: at most %d feedback ids per batch", coreerrors.ErrInvalidInput, maxBatchIDs))

		return
	}

	res := s.analyses.AnalyzeBatch(r.Context(), p.OrganizationID, req.FeedbackIDs, req.ForceReanalysis)
	writeJSON(w, http.StatusOK, res)
}

// GET /analysis/pending-review?limit=N
func (s *Server) pendingReview(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	limit := defaultPendingLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPendingLimit {
			s.writeError(w, r, fmt.Errorf("%w: limit must be between 1 and %d", coreerrors.ErrInvalidInput, maxPendingLimit))

			return
		}

		limit = n
	}

	list, err := s.analyses.PendingReview(r.Context(), p.OrganizationID, limit)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	out := make([]analysisResponse, 0, len(list))
	for i := range list {
		out = append(out, toAnalysisResponse(&list[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// GET /analysis/{feedbackID}
func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	id := mux.Vars(r)["feedbackID"]
	if err := validateID(id); err != nil {
		s.writeError(w, r, err)

		return
	}

	a, err := s.analyses.Get(r.Context(), p.OrganizationID, id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, toAnalysisResponse(a))
}

// PUT /analysis/{feedbackID}/review
func (s *Server) reviewAnalysis(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	id := mux.Vars(r)["feedbackID"]
	if err := validateID(id); err != nil {
		s.writeError(w, r, err)

		return
	}

	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	a, err := s.analyses.Review(r.Context(), p.OrganizationID, id, p.UserID, analysis.ReviewRequest{
		Approved:      req.Approved,
		Sentiment:     req.Sentiment,
		Categories:    req.Categories,
		Themes:        req.Themes,
		PriorityScore: req.PriorityScore,
		Urgency:       req.Urgency,
		Notes:         req.Notes,
	})
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, toAnalysisResponse(a))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", coreerrors.ErrInvalidInput, err)
	}

	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q is not a uuid", coreerrors.ErrInvalidID, id)
	}

	return nil
}
