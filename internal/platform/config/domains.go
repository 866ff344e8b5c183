package config

import "time"

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	PostgresDSN       string        `env:"POSTGRES_DSN"`
	MaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	MinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// LLMConfig holds AI provider and retry settings.
type LLMConfig struct {
	Provider        string        `env:"LLM_PROVIDER" envDefault:"anthropic"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	Model           string        `env:"LLM_MODEL"`
	MaxTokens       int64         `env:"LLM_MAX_TOKENS" envDefault:"2048"`
	Temperature     float64       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	MaxAttempts     int           `env:"LLM_MAX_ATTEMPTS" envDefault:"3"`
	AttemptTimeout  time.Duration `env:"LLM_ATTEMPT_TIMEOUT" envDefault:"30s"`
	BackoffBase     time.Duration `env:"LLM_BACKOFF_BASE" envDefault:"500ms"`
	BackoffMax      time.Duration `env:"LLM_BACKOFF_MAX" envDefault:"5s"`
	RateLimitRPS    float64       `env:"LLM_RATE_LIMIT_RPS" envDefault:"2"`
	// Consecutive failures before the breaker opens.
	CircuitThreshold uint32        `env:"LLM_CIRCUIT_THRESHOLD" envDefault:"5"`
	CircuitTimeout   time.Duration `env:"LLM_CIRCUIT_TIMEOUT" envDefault:"1m"`
	CircuitInterval  time.Duration `env:"LLM_CIRCUIT_INTERVAL" envDefault:"2m"`
}

// AnalysisConfig holds orchestrator settings.
type AnalysisConfig struct {
	BatchConcurrency int      `env:"ANALYSIS_BATCH_CONCURRENCY" envDefault:"4"`
	KnownCompetitors []string `env:"KNOWN_COMPETITORS" envSeparator:","`
}

// WorkerConfig holds background analysis worker settings.
type WorkerConfig struct {
	Enabled      bool          `env:"WORKER_ENABLED" envDefault:"true"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"30s"`
	BatchSize    int           `env:"WORKER_BATCH_SIZE" envDefault:"10"`
}

// AlertConfig holds Telegram review alert settings. Alerts are off when
// either value is empty.
type AlertConfig struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_ALERT_CHAT_ID"`
}

// Enabled reports whether review alerts are configured.
func (c AlertConfig) Enabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}
