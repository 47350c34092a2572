package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all model provider configuration.
type Config struct {
	// Provider selects the backend.
	// Values: "gemini", "anthropic", "openai", "openrouter", "mock"
	Provider string

	Gemini     GeminiConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single model call. Default: 60s.
	Timeout time.Duration
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-2.5-flash-lite"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.5-flash-lite"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with the defaults the book generator was
// tuned with: Gemini flash-lite, three attempts, 2s..10s backoff.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash-lite",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash-lite",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Multiplier:  1,
			MinWait:     2 * time.Second,
			MaxWait:     10 * time.Second,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from ESCAPEBOOK_* environment variables,
// falling back to defaults for unset values. When no provider key is set
// explicitly it probes the standard vendor variables (see DiscoverConfig).
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	explicit := os.Getenv("ESCAPEBOOK_LLM_PROVIDER")
	if explicit != "" {
		cfg.Provider = explicit
	} else if discovered, ok := DiscoverConfig(); ok {
		cfg = discovered
	}

	setString(&cfg.Gemini.APIKey, "ESCAPEBOOK_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "ESCAPEBOOK_GEMINI_MODEL")
	setString(&cfg.Anthropic.APIKey, "ESCAPEBOOK_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "ESCAPEBOOK_ANTHROPIC_MODEL")
	setString(&cfg.OpenAI.APIKey, "ESCAPEBOOK_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "ESCAPEBOOK_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "ESCAPEBOOK_OPENAI_BASE_URL")
	setString(&cfg.OpenRouter.APIKey, "ESCAPEBOOK_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "ESCAPEBOOK_OPENROUTER_MODEL")

	if v := os.Getenv("ESCAPEBOOK_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("ESCAPEBOOK_RETRY_ATTEMPTS: want a positive integer, got %q", v)
		}
		cfg.Retry.MaxAttempts = n
	}
	if v := os.Getenv("ESCAPEBOOK_RETRY_MULTIPLIER"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return Config{}, fmt.Errorf("ESCAPEBOOK_RETRY_MULTIPLIER: want a non-negative number, got %q", v)
		}
		cfg.Retry.Multiplier = f
	}
	if err := setDuration(&cfg.Retry.MinWait, "ESCAPEBOOK_RETRY_MIN_WAIT"); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.Retry.MaxWait, "ESCAPEBOOK_RETRY_MAX_WAIT"); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.Timeout, "ESCAPEBOOK_TIMEOUT"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GOOGLE_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set
// and that the retry policy is usable.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("ESCAPEBOOK_GEMINI_API_KEY is required for the gemini provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ESCAPEBOOK_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("ESCAPEBOOK_OPENAI_API_KEY is required for the openai provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("ESCAPEBOOK_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxWait > 0 && c.Retry.MinWait > c.Retry.MaxWait {
		return fmt.Errorf("retry min wait %s exceeds max wait %s", c.Retry.MinWait, c.Retry.MaxWait)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
