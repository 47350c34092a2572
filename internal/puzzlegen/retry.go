package puzzlegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/escapebook/internal/llm"
	"github.com/abhisek/escapebook/internal/logging"
)

// ErrGenerationExhausted is matched by every *ExhaustedError.
var ErrGenerationExhausted = errors.New("generation exhausted")

// ExhaustedError is returned when no attempt produced records.
type ExhaustedError struct {
	// Attempts is the number of model calls made.
	Attempts int

	// Last is the error of the final attempt.
	Last error

	// LastRaw is the model text of the final attempt, if it got that far.
	LastRaw string

	// Permanent is set when the loop stopped early on a permanent error.
	Permanent bool
}

func (e *ExhaustedError) Error() string {
	if e.Permanent {
		return fmt.Sprintf("generation failed permanently after %d attempt(s): %v", e.Attempts, e.Last)
	}
	return fmt.Sprintf("generation exhausted after %d attempt(s): %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrGenerationExhausted, e.Last}
}

// Coordinator runs model invocation and extraction as one retried unit.
// Every failure except a permanent provider error or cancellation uses
// up one attempt; the same prompt is sent each time.
type Coordinator struct {
	provider llm.Provider
	cfg      Config
	log      *logging.Logger
	sleep    func(context.Context, time.Duration) error
}

// NewCoordinator creates a Coordinator. A nil log discards output.
func NewCoordinator(provider llm.Provider, cfg Config, log *logging.Logger) *Coordinator {
	if log == nil {
		log = logging.Nop()
	}
	return &Coordinator{provider: provider, cfg: cfg, log: log, sleep: sleepContext}
}

// Generate sends prompt until Extract succeeds or the budget runs out.
// Waits happen only between attempts. Cancellation returns the context
// error as is.
func (c *Coordinator) Generate(ctx context.Context, prompt string, expectArray bool) ([]Record, error) {
	req := llm.UserPrompt(prompt, c.cfg.MaxTokens, c.cfg.Temperature)
	if c.cfg.StructuredOutput {
		req.Schema = PageSchema
		if expectArray {
			req.Schema = PagesSchema
		}
	}

	attempts := c.cfg.Retry.Attempts()
	var last error
	var lastRaw string

	for n := 1; n <= attempts; n++ {
		records, raw, err := c.attempt(ctx, req, expectArray)
		if err == nil {
			if n > 1 {
				c.log.Info("generation recovered", "attempt", n)
			}
			return records, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		last, lastRaw = err, raw

		if llm.IsPermanent(err) {
			c.log.Error("generation failed permanently", "attempt", n, "error", err)
			return nil, &ExhaustedError{Attempts: n, Last: err, LastRaw: raw, Permanent: true}
		}
		if n == attempts {
			break
		}

		wait := c.cfg.Retry.Backoff(n, err)
		c.log.Warn("generation attempt failed",
			"attempt", n, "max_attempts", attempts, "wait", wait, "error", err)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	c.log.Error("generation exhausted", "attempts", attempts, "error", last)
	return nil, &ExhaustedError{Attempts: attempts, Last: last, LastRaw: lastRaw}
}

// attempt makes one call and extracts its reply. raw is whatever model
// text is available for diagnostics.
func (c *Coordinator) attempt(ctx context.Context, req llm.Request, expectArray bool) ([]Record, string, error) {
	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		var inv *llm.ErrInvalidResponse
		if errors.As(err, &inv) {
			return nil, inv.Text, err
		}
		return nil, "", err
	}

	records, err := Extract(resp.Text, expectArray)
	if err != nil {
		return nil, resp.Text, err
	}
	return records, resp.Text, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
