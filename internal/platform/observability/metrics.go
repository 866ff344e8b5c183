package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedbackIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_feedback_ingested_total",
		Help: "The total number of feedback items stored",
	}, []string{"source"})

	AnalysesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_analyses_total",
		Help: "The total number of analysis runs by outcome",
	}, []string{"status"})

	AnalysisUrgency = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_analysis_urgency_total",
		Help: "Analyses by resulting urgency tier",
	}, []string{"urgency"})

	AnalysisPriorityScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "revu_analysis_priority_score",
		Help:    "Distribution of computed priority scores",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	ReviewGateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_review_gate_total",
		Help: "Review gate outcomes labelled by the first matching rule",
	}, []string{"reason"})

	ReviewsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_reviews_submitted_total",
		Help: "Human review submissions",
	}, []string{"approved"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "revu_analysis_duration_seconds",
		Help:    "End-to-end duration of a single feedback analysis",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})

	BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "revu_analysis_batch_size",
		Help:    "Number of feedback items per batch analysis request",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
	})

	PendingBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "revu_pending_analysis_backlog",
		Help: "Feedback items picked up by the worker in the last poll",
	})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "revu_llm_request_duration_seconds",
		Help:    "Duration of LLM requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "model"})

	LLMAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_llm_attempts_total",
		Help: "LLM judgment attempts by provider and outcome",
	}, []string{"provider", "outcome"})

	LLMFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_llm_fallbacks_total",
		Help: "Fallback judgments substituted, by reason",
	}, []string{"reason"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_llm_requests_total",
		Help: "Total number of LLM requests",
	}, []string{"provider", "model", "status"})

	LLMTokensPrompt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_llm_tokens_prompt_total",
		Help: "Total number of prompt tokens used",
	}, []string{"provider", "model"})

	LLMTokensCompletion = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_llm_tokens_completion_total",
		Help: "Total number of completion tokens used",
	}, []string{"provider", "model"})

	LLMCircuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "revu_llm_circuit_state",
		Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
	}, []string{"provider"})

	AlertsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_review_alerts_total",
		Help: "Review alerts sent for critical feedback",
	}, []string{"status"})

	CSVImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_csv_import_rows_total",
		Help: "CSV rows processed by outcome",
	}, []string{"status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "revu_http_requests_total",
		Help: "API requests by route and status code",
	}, []string{"route", "code"})
)
