package llm

import "context"

// Provider is the text-generation backend used to draft puzzle pages.
// Implementations send one request at a time and return the model's raw
// text; turning that text into records is the caller's job.
type Provider interface {
	// Generate sends the request and returns the model's raw text output.
	// Errors are classified as transient (*ErrRateLimit,
	// *ErrProviderUnavailable, *ErrInvalidResponse) or permanent
	// (*ErrPermanent); see IsPermanent.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is an optional system prompt.
	System string

	// Messages is the conversation. Puzzle drafting is single-turn: one
	// user message holding the composed instruction.
	Messages []Message

	// Schema, when set, asks the backend for native JSON output and makes
	// the provider validate the returned text against it.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the backend default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds a single-turn request around prompt.
func UserPrompt(prompt string, maxTokens int, temperature float64) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (schema name for OpenAI, cache key for
	// validation). Kebab-case, e.g. "puzzle-pages".
	Name string

	// Description is sent to backends that accept one.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any

	// ValidateAs, when set, is checked against the reply instead of
	// Definition. Use it to send a strict schema to the backend while
	// accepting looser replies locally.
	ValidateAs *Schema
}

// Response holds the model's output.
type Response struct {
	// Text is the raw generated text, unmodified.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
