package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/escapebook/internal/logging"
)

// mockPage answers both array and object requests: the object extractor
// finds the inner braces, the array extractor the outer brackets.
const mockPage = `[{"nadpis":"Mock page","zadani":"Count the anchors:\n1. How many anchors?","kod":"4","prompt":"Four anchors on a sandy beach."}]`

// NewProvider creates a Provider from configuration, wrapped with request
// logging: caller → logging → base. Retries live with the caller, which
// retries extraction failures too.
func NewProvider(ctx context.Context, cfg Config, sink EventSink, log *logging.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		mock := NewMockProvider()
		mock.SetFallback(MockResponse{Text: mockPage})
		base = mock
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if cfg.Timeout > 0 {
		base = WithTimeout(base, cfg.Timeout)
	}
	return WithLogging(base, cfg.Provider, sink, log), nil
}

// timeoutProvider bounds each call with its own deadline. A call that
// runs out of time is reported as ErrProviderUnavailable so it stays
// retryable; only the caller's own cancellation surfaces as a context error.
type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p so that each Generate call gets at most d.
func WithTimeout(p Provider, d time.Duration) Provider {
	return &timeoutProvider{inner: p, timeout: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.inner.Generate(callCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("call exceeded %s: %v", t.timeout, err)}
	}
	return resp, err
}

func (t *timeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
