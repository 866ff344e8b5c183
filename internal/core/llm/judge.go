package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/platform/config"
	"github.com/inovaitive/revu/internal/platform/observability"
)

// JudgeConfig tunes retries, timeouts and the circuit breaker.
type JudgeConfig struct {
	MaxAttempts      int
	AttemptTimeout   time.Duration
	BackoffBase      time.Duration
	BackoffMax       time.Duration
	MaxTokens        int64
	Temperature      float64
	CircuitThreshold uint32
	CircuitTimeout   time.Duration
	CircuitInterval  time.Duration
}

// JudgeConfigFrom maps environment config onto judge settings.
func JudgeConfigFrom(cfg config.LLMConfig) JudgeConfig {
	return JudgeConfig{
		MaxAttempts:      cfg.MaxAttempts,
		AttemptTimeout:   cfg.AttemptTimeout,
		BackoffBase:      cfg.BackoffBase,
		BackoffMax:       cfg.BackoffMax,
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		CircuitThreshold: cfg.CircuitThreshold,
		CircuitTimeout:   cfg.CircuitTimeout,
		CircuitInterval:  cfg.CircuitInterval,
	}
}

func (c JudgeConfig) withDefaults() JudgeConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}

	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = defaultAttemptTimeout
	}

	if c.BackoffBase <= 0 {
		c.BackoffBase = defaultBackoffBase
	}

	if c.BackoffMax < c.BackoffBase {
		c.BackoffMax = max(defaultBackoffMax, c.BackoffBase)
	}

	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}

	if c.Temperature <= 0 {
		c.Temperature = defaultTemperature
	}

	if c.CircuitThreshold == 0 {
		c.CircuitThreshold = defaultCircuitThreshold
	}

	if c.CircuitTimeout <= 0 {
		c.CircuitTimeout = defaultCircuitTimeout
	}

	if c.CircuitInterval <= 0 {
		c.CircuitInterval = defaultCircuitInterval
	}

	return c
}

// attemptResult is the outcome of one provider call: either a judgment or
// a failure with the reason it failed and whether trying again can help.
type attemptResult struct {
	judgment  domain.Judgment
	err       error
	reason    string
	retryable bool
}

func (r attemptResult) ok() bool {
	return r.err == nil
}

// Judge turns feedback text into a structured judgment using a Provider.
// Judge never returns an error: exhausted retries, a missing provider,
// an open circuit or a cancelled context all yield FallbackJudgment.
type Judge struct {
	provider Provider
	cfg      JudgeConfig
	breaker  *gobreaker.CircuitBreaker
	logger   *zerolog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewJudge creates a Judge around provider.
func NewJudge(provider Provider, cfg JudgeConfig, logger *zerolog.Logger) *Judge {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	cfg = cfg.withDefaults()
	name := string(provider.Name())

	settings := gobreaker.Settings{
		Name:        "llm-" + name,
		MaxRequests: circuitHalfOpenRequests,
		Interval:    cfg.CircuitInterval,
		Timeout:     cfg.CircuitTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.CircuitThreshold
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about provider health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(breakerName string, from, to gobreaker.State) {
			observability.LLMCircuitState.WithLabelValues(name).Set(float64(to))
			logger.Warn().
				Str(logKeyProvider, breakerName).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("LLM circuit breaker state changed")
		},
	}

	return &Judge{
		provider: provider,
		cfg:      cfg,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		logger:   logger,
		sleep:    sleepContext,
	}
}

// ProviderName returns the name of the wrapped provider.
func (j *Judge) ProviderName() ProviderName {
	return j.provider.Name()
}

// Judge returns the provider's judgment for req, or the fallback judgment.
func (j *Judge) Judge(ctx context.Context, req JudgeRequest) domain.Judgment {
	name := string(j.provider.Name())

	if !j.provider.IsAvailable() {
		return j.fallback(req.Text, ReasonNotConfigured, coreerrors.ErrProviderNotConfigured)
	}

	prompt := BuildPrompt(req)

	var last attemptResult

	for attempt := 1; attempt <= j.cfg.MaxAttempts; attempt++ {
		last = j.attempt(ctx, prompt)

		observability.LLMAttempts.WithLabelValues(name, outcomeLabel(last)).Inc()

		if last.ok() {
			if attempt > 1 {
				j.logger.Info().Str(logKeyProvider, name).Int(logKeyAttempt, attempt).Msg("LLM judgment succeeded after retry")
			}

			return last.judgment
		}

		j.logger.Warn().
			Err(last.err).
			Str(logKeyProvider, name).
			Int(logKeyAttempt, attempt).
			Int("max_attempts", j.cfg.MaxAttempts).
			Str(logKeyReason, last.reason).
			Msg("LLM judgment attempt failed")

		if !last.retryable || attempt == j.cfg.MaxAttempts {
			break
		}

		if err := j.sleep(ctx, j.backoff(attempt)); err != nil {
			last = attemptResult{err: err, reason: ReasonCanceled}

			break
		}
	}

	return j.fallback(req.Text, last.reason, last.err)
}

func (j *Judge) attempt(ctx context.Context, prompt string) attemptResult {
	if err := ctx.Err(); err != nil {
		return attemptResult{err: err, reason: ReasonCanceled}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, j.cfg.AttemptTimeout)
	defer cancel()

	start := time.Now()

	out, err := j.breaker.Execute(func() (interface{}, error) {
		return j.provider.Complete(attemptCtx, CompletionRequest{
			Prompt:      prompt,
			MaxTokens:   j.cfg.MaxTokens,
			Temperature: j.cfg.Temperature,
		})
	})

	observability.LLMRequestDuration.WithLabelValues(string(j.provider.Name()), j.provider.Model()).Observe(time.Since(start).Seconds())

	if err != nil {
		return classifyFailure(ctx, err)
	}

	completion, _ := out.(Completion) //nolint:errcheck // Execute returns what the closure returned

	judgment, err := DecodeJudgment(completion.Text)
	if err != nil {
		return attemptResult{err: err, reason: ReasonMalformed, retryable: true}
	}

	judgment.Model = completion.Model
	if judgment.Model == "" {
		judgment.Model = j.provider.Model()
	}

	return attemptResult{judgment: judgment}
}

// classifyFailure decides whether a provider error is worth retrying.
// Credential problems and an open breaker will not improve on retry; a
// cancelled parent context means nobody is waiting for the answer.
func classifyFailure(ctx context.Context, err error) attemptResult {
	switch {
	case ctx.Err() != nil:
		return attemptResult{err: err, reason: ReasonCanceled}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return attemptResult{err: errors.Join(coreerrors.ErrCircuitBreakerOpen, err), reason: ReasonCircuitOpen}
	case errors.Is(err, coreerrors.ErrProviderAuth):
		return attemptResult{err: err, reason: ReasonAuth}
	case errors.Is(err, coreerrors.ErrProviderNotConfigured):
		return attemptResult{err: err, reason: ReasonNotConfigured}
	case errors.Is(err, coreerrors.ErrRateLimited):
		return attemptResult{err: err, reason: ReasonRateLimited, retryable: true}
	default:
		return attemptResult{err: err, reason: ReasonProviderError, retryable: true}
	}
}

// backoff returns the wait before the attempt after the given one:
// base, 2*base, 4*base and so on, capped at BackoffMax.
func (j *Judge) backoff(attempt int) time.Duration {
	d := j.cfg.BackoffBase

	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= j.cfg.BackoffMax {
			return j.cfg.BackoffMax
		}
	}

	return min(d, j.cfg.BackoffMax)
}

func (j *Judge) fallback(text, reason string, err error) domain.Judgment {
	observability.LLMFallbacks.WithLabelValues(reason).Inc()

	j.logger.Warn().
		Err(err).
		Str(logKeyProvider, string(j.provider.Name())).
		Str(logKeyReason, reason).
		Msg("Using fallback judgment")

	return FallbackJudgment(text)
}

func outcomeLabel(r attemptResult) string {
	if r.ok() {
		return StatusSuccess
	}

	return r.reason
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
