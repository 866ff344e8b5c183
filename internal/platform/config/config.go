package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"

	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

var (
	errMissingDSN       = errors.New("POSTGRES_DSN is required")
	errMissingJWTSecret = errors.New("JWT_SECRET is required")
	errUnknownProvider  = errors.New("unknown LLM_PROVIDER")
	errInvalidValue     = errors.New("invalid config value")
)

type Config struct {
	AppEnv      string        `env:"APP_ENV" envDefault:"local"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int           `env:"HTTP_PORT" envDefault:"8080"`
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTTokenTTL time.Duration `env:"JWT_TOKEN_TTL" envDefault:"24h"`

	Database DatabaseConfig
	LLM      LLMConfig
	Analysis AnalysisConfig
	Worker   WorkerConfig
	Alerts   AlertConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsLocal reports whether the service runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.AppEnv == EnvLocal
}

// RequireDatabase fails when no database DSN is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.PostgresDSN == "" {
		return errMissingDSN
	}

	return nil
}

// RequireJWTSecret fails when no signing secret is configured.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return errMissingJWTSecret
	}

	return nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("%w: %q", errUnknownProvider, c.LLM.Provider)
	}

	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("%w: LLM_MAX_ATTEMPTS must be at least 1", errInvalidValue)
	}

	if c.Analysis.BatchConcurrency < 1 {
		return fmt.Errorf("%w: ANALYSIS_BATCH_CONCURRENCY must be at least 1", errInvalidValue)
	}

	if c.Worker.BatchSize < 1 {
		return fmt.Errorf("%w: WORKER_BATCH_SIZE must be at least 1", errInvalidValue)
	}

	return nil
}
