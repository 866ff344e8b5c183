package llm

import "time"

// Error message templates
const (
	errRateLimiter          = "%w: %w"
	errAnthropicCompletion  = "anthropic messages: %w"
	errOpenAIChatCompletion = "openai chat completion error: %w"
)

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
	DefaultOpenAIModel    = "gpt-4o-mini"
	mockModel             = "mock-heuristic"
)

// Request defaults.
const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.3
	rateLimiterBurst   = 2
	contentTypeText    = "text"
)

// Judge defaults, used when the corresponding config value is zero.
const (
	defaultMaxAttempts      = 3
	defaultAttemptTimeout   = 30 * time.Second
	defaultBackoffBase      = 500 * time.Millisecond
	defaultBackoffMax       = 5 * time.Second
	defaultCircuitThreshold = 5
	defaultCircuitTimeout   = time.Minute
	defaultCircuitInterval  = 2 * time.Minute
	circuitHalfOpenRequests = 1
)

// Fallback reasons, used as log fields and metric labels.
const (
	ReasonNotConfigured = "not_configured"
	ReasonCircuitOpen   = "circuit_open"
	ReasonAuth          = "auth"
	ReasonMalformed     = "malformed"
	ReasonProviderError = "provider_error"
	ReasonRateLimited   = "rate_limited"
	ReasonCanceled      = "canceled"
)

// Metric status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Log key strings
const (
	logKeyProvider = "provider"
	logKeyModel    = "model"
	logKeyAttempt  = "attempt"
	logKeyReason   = "reason"
)
