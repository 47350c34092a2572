package puzzlegen

import (
	"time"

	"github.com/abhisek/escapebook/internal/llm"
)

// Config controls page generation.
type Config struct {
	// Retry is the attempt budget and backoff shared by model calls and
	// extraction.
	Retry llm.RetryConfig

	// MaxTokens is the token budget for one model reply.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the backend default.
	Temperature float64

	// StructuredOutput asks the backend for native JSON output
	// constrained by PageSchema or PagesSchema.
	StructuredOutput bool

	// PageDelay is the pause between consecutive calls in pages mode.
	PageDelay time.Duration
}

// DefaultConfig returns the settings the book generator was tuned with.
func DefaultConfig() Config {
	return Config{
		Retry:     llm.DefaultConfig().Retry,
		MaxTokens: 8192,
		PageDelay: 2 * time.Second,
	}
}
