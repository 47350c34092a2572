package store

import (
	"context"
	"time"

	"github.com/abhisek/escapebook/internal/book"
	"github.com/abhisek/escapebook/internal/llm"
)

// BookSummary is a book without its pages, for listings.
type BookSummary struct {
	ID        string
	Theme     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Pages     int
}

// BookRepo manages persisted books.
type BookRepo interface {
	// Create stores a new book with all its pages.
	Create(ctx context.Context, b *book.Book) error

	// Get loads a book by ID, or by a unique ID prefix.
	Get(ctx context.Context, id string) (*book.Book, error)

	// List returns all books, newest first.
	List(ctx context.Context) ([]BookSummary, error)

	// SavePage writes page index (0-based) of b and bumps the book's
	// update time.
	SavePage(ctx context.Context, b *book.Book, index int) error

	// Delete removes a book and its pages.
	Delete(ctx context.Context, id string) error
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match (empty = any)
}

// LLMEvent is a stored model request.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	llm.RequestEvent
}

// PurposeUsage aggregates token usage for one request purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries model request events. It satisfies
// llm.EventSink.
type EventRepo interface {
	// AppendLLMRequest records a model call.
	AppendLLMRequest(ctx context.Context, ev llm.RequestEvent) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
