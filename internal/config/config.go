// internal/config/config.go
//
// Process-wide configuration for the idiom game server.
// Responsibilities:
//   - Load a `.env` file when present (development convenience).
//   - Parse environment variables into a typed Config with defaults.
//   - Validate that the selected provider has credentials.
//
// Environment variables are documented on the Config fields.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Provider names accepted by PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds every tunable of the server and CLI.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"` // json | console
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	// Secure cookies are required when the client is served from another site over HTTPS.
	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"false"`

	Provider        string        `env:"PROVIDER" envDefault:"openai"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"20s"`

	OpenAIKey        string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIIdiomModel string `env:"OPENAI_IDIOM_MODEL" envDefault:"gpt-4o"`
	OpenAIScoreModel string `env:"OPENAI_SCORE_MODEL" envDefault:"gpt-3.5-turbo"`

	AnthropicKey     string `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string `env:"ANTHROPIC_BASE_URL"`
	AnthropicModel   string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`

	Language        string        `env:"IDIOM_LANGUAGE" envDefault:"Russian"`
	PromptsDir      string        `env:"PROMPTS_DIR"`
	RevealThreshold int           `env:"REVEAL_THRESHOLD" envDefault:"90"`
	ClampScores     bool          `env:"CLAMP_SCORES" envDefault:"true"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"2h"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the optional .env files and parses the environment into a Config.
// Files that do not exist are skipped; values already in the environment win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// Missing files are fine; godotenv never overrides existing variables.
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return cfg, nil
}

// Validate reports configuration that would make the provider unusable.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAIKey) == "" {
			return errors.New("OPENAI_API_KEY is required when PROVIDER=openai")
		}
	case ProviderAnthropic:
		if strings.TrimSpace(c.AnthropicKey) == "" {
			return errors.New("ANTHROPIC_API_KEY is required when PROVIDER=anthropic")
		}
	default:
		return fmt.Errorf("unknown PROVIDER %q (want %s or %s)", c.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	if c.RevealThreshold < 0 || c.RevealThreshold > 100 {
		return fmt.Errorf("REVEAL_THRESHOLD must be within 0..100, got %d", c.RevealThreshold)
	}
	if c.ProviderTimeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT must be positive")
	}
	return nil
}
