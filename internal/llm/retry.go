package llm

import (
	"errors"
	"math"
	"time"
)

// RetryConfig is the attempt budget and backoff policy shared by every
// retry loop around a Provider.
type RetryConfig struct {
	// MaxAttempts counts the first attempt. Values below 1 mean 1.
	MaxAttempts int

	// Multiplier scales the exponential curve, in seconds: the wait after
	// failed attempt n is Multiplier * 2^(n-1) seconds.
	Multiplier float64

	// MinWait and MaxWait clamp every computed wait.
	MinWait time.Duration
	MaxWait time.Duration
}

// Attempts returns the effective attempt budget.
func (c RetryConfig) Attempts() int {
	if c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}

// Backoff returns how long to wait after failed attempt n (1-based) before
// the next one. A rate limit carrying RetryAfter wins over the curve.
func (c RetryConfig) Backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	if attempt < 1 {
		attempt = 1
	}
	secs := c.Multiplier * math.Pow(2, float64(attempt-1))
	wait := time.Duration(secs * float64(time.Second))

	if c.MaxWait > 0 && wait > c.MaxWait {
		wait = c.MaxWait
	}
	if wait < c.MinWait {
		wait = c.MinWait
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}
