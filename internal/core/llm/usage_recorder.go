package llm

import (
	"sync/atomic"

	"github.com/inovaitive/revu/internal/platform/observability"
)

// UsageRecorder records token usage metrics for LLM requests.
// This interface allows for dependency injection and easier testing.
type UsageRecorder interface {
	RecordTokenUsage(provider, model string, promptTokens, completionTokens int, success bool)
}

// metricsUsageRecorder implements UsageRecorder with Prometheus counters.
type metricsUsageRecorder struct{}

// NewUsageRecorder returns the Prometheus-backed recorder.
func NewUsageRecorder() UsageRecorder {
	return metricsUsageRecorder{}
}

// RecordTokenUsage records token usage metrics for an LLM request.
func (metricsUsageRecorder) RecordTokenUsage(provider, model string, promptTokens, completionTokens int, success bool) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}

	observability.LLMRequests.WithLabelValues(provider, model, status).Inc()

	if promptTokens > 0 {
		observability.LLMTokensPrompt.WithLabelValues(provider, model).Add(float64(promptTokens))
	}

	if completionTokens > 0 {
		observability.LLMTokensCompletion.WithLabelValues(provider, model).Add(float64(completionTokens))
	}
}

// noopUsageRecorder is a no-op implementation for testing or when usage tracking is disabled.
type noopUsageRecorder struct{}

// NoopUsageRecorder returns a no-op implementation of UsageRecorder.
func NoopUsageRecorder() UsageRecorder {
	return noopUsageRecorder{}
}

// RecordTokenUsage does nothing (no-op implementation).
func (noopUsageRecorder) RecordTokenUsage(_, _ string, _, _ int, _ bool) {
	// No-op
}

type recorderHolder struct {
	UsageRecorder
}

var defaultRecorder atomic.Value

func init() {
	defaultRecorder.Store(recorderHolder{NewUsageRecorder()})
}

// SetUsageRecorder replaces the recorder used by providers.
func SetUsageRecorder(r UsageRecorder) {
	if r == nil {
		r = NoopUsageRecorder()
	}

	defaultRecorder.Store(recorderHolder{r})
}

// RecordTokenUsage reports usage through the current recorder.
func RecordTokenUsage(provider, model string, promptTokens, completionTokens int, success bool) {
	defaultRecorder.Load().(recorderHolder).RecordTokenUsage(provider, model, promptTokens, completionTokens, success) //nolint:forcetypeassert // only recorderHolder is stored
}
