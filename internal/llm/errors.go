package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimit indicates the backend returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the backend answered but the answer is
// unusable: no text part, or text that fails the requested schema.
type ErrInvalidResponse struct {
	Text string
	Err  error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the backend is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model provider unavailable: %v", e.Err)
	}
	return "model provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrPermanent indicates a failure that another attempt cannot fix:
// rejected credentials, a malformed request, an unknown model.
type ErrPermanent struct {
	StatusCode int
	Err        error
}

func (e *ErrPermanent) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model request rejected (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model request rejected: %v", e.Err)
}

func (e *ErrPermanent) Unwrap() error { return e.Err }

// IsPermanent reports whether err should end a retry loop immediately.
// Cancellation counts as permanent.
func IsPermanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var perm *ErrPermanent
	return errors.As(err, &perm)
}

// classifyStatus maps an HTTP status from any backend SDK to the error
// taxonomy above. Unknown statuses are treated as transient.
func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case status >= 500:
		return &ErrProviderUnavailable{Err: err}
	case status == http.StatusBadRequest,
		status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusNotFound,
		status == http.StatusUnprocessableEntity:
		return &ErrPermanent{StatusCode: status, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
