// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Providers lists the judgment oracle variants the server can be configured with.
var Providers = []string{"openai", "gemini", "ollama"}

// Config holds every runtime setting for the server and historian binaries.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// DatabaseURL is optional for the server; the historian requires it.
	DatabaseURL string `env:"DATABASE_URL"`

	// GameTTL expires unresolved game snapshots.
	GameTTL time.Duration `env:"GAME_TTL" envDefault:"2h"`

	LLM LLMConfig

	// JudgeTimeout bounds a single oracle call at the transport boundary.
	JudgeTimeout time.Duration `env:"JUDGE_TIMEOUT" envDefault:"60s"`

	TurnQueueName          string        `env:"TURN_QUEUE_NAME" envDefault:"promptwars_turns"`
	HistorianBatchSize     int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlushInterval time.Duration `env:"HISTORIAN_FLUSH_INTERVAL" envDefault:"500ms"`

	// TokenExpire is the session token lifetime, 0 => never expires.
	TokenExpire time.Duration `env:"TOKEN_EXPIRE_TIME" envDefault:"72h"`
}

// LLMConfig selects and configures the judgment oracle provider.
type LLMConfig struct {
	Provider      string `env:"LLM_PROVIDER" envDefault:"openai"`
	Model         string `env:"LLM_MODEL"`
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GeminiKey     string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given key/value map instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if !knownProvider(cfg.LLM.Provider) {
		return Config{}, fmt.Errorf("unknown LLM provider %q, available providers: %s",
			cfg.LLM.Provider, strings.Join(Providers, ", "))
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
		if cfg.IsProduction() {
			cfg.LogLevel = "info"
		}
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func knownProvider(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}
