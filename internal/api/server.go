// Package api exposes feedback and analysis operations over JSON HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/inovaitive/revu/internal/core/domain"
	"github.com/inovaitive/revu/internal/ingest/csvimport"
	"github.com/inovaitive/revu/internal/process/analysis"
	"github.com/inovaitive/revu/internal/platform/observability"
)

const (
	// PathPrefix is where the API is mounted.
	PathPrefix = "/api/v1"

	maxJSONBody = 1 << 20
	maxCSVBody  = 10 << 20
	maxBatchIDs = 500

	defaultPendingLimit = 20
	maxPendingLimit     = 100

	logFieldRoute = "route"
)

// AnalysisService runs and reviews analyses.
type AnalysisService interface {
	Analyze(ctx context.Context, orgID, feedbackID string, force bool) (*domain.Analysis, error)
	AnalyzeBatch(ctx context.Context, orgID string, ids []string, force bool) analysis.BatchResult
	Get(ctx context.Context, orgID, feedbackID string) (*domain.Analysis, error)
	PendingReview(ctx context.Context, orgID string, limit int) ([]domain.Analysis, error)
	Review(ctx context.Context, orgID, feedbackID, reviewerID string, req analysis.ReviewRequest) (*domain.Analysis, error)
}

// FeedbackStore manages raw feedback items.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, f *domain.Feedback) error
	FindFeedback(ctx context.Context, orgID, id string) (*domain.Feedback, error)
	DeleteFeedback(ctx context.Context, orgID, id string) error
}

// Importer loads feedback from CSV.
type Importer interface {
	Import(ctx context.Context, orgID string, r io.Reader) (csvimport.Result, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	analyses  AnalysisService
	feedback  FeedbackStore
	importer  Importer
	jwtSecret []byte
	logger    *zerolog.Logger
	now       func() time.Time
}

// NewServer creates a Server.
func NewServer(analyses AnalysisService, feedback FeedbackStore, importer Importer, jwtSecret []byte, logger *zerolog.Logger) *Server {
	return &Server{
		analyses:  analyses,
		feedback:  feedback,
		importer:  importer,
		jwtSecret: jwtSecret,
		logger:    logger,
		now:       time.Now,
	}
}

// Handler builds the router. Every route requires a bearer token.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})

	v1 := r.PathPrefix(PathPrefix).Subrouter()
	v1.Use(s.countRequests, s.RequireAuth)

	v1.HandleFunc("/analysis/trigger", s.triggerAnalysis).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/batch", s.batchAnalysis).Methods(http.MethodPost)
	v1.HandleFunc("/analysis/pending-review", s.pendingReview).Methods(http.MethodGet)
	v1.HandleFunc("/analysis/{feedbackID}", s.getAnalysis).Methods(http.MethodGet)
	v1.HandleFunc("/analysis/{feedbackID}/review", s.reviewAnalysis).Methods(http.MethodPut)

	v1.HandleFunc("/feedback", s.createFeedback).Methods(http.MethodPost)
	v1.HandleFunc("/feedback/batch", s.uploadCSV).Methods(http.MethodPost)
	v1.HandleFunc("/feedback/template", s.csvTemplate).Methods(http.MethodGet)
	v1.HandleFunc("/feedback/{feedbackID}", s.getFeedback).Methods(http.MethodGet)
	v1.HandleFunc("/feedback/{feedbackID}", s.deleteFeedback).Methods(http.MethodDelete)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		observability.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
